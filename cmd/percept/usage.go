package main

const flagSections = `{{if .HasAvailableLocalFlags}}Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}
{{if .HasAvailableInheritedFlags}}Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}`

const commandList = `{{if .HasAvailableSubCommands}}Commands:
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}  {{rpad .Name .NamePadding }} {{.Short}}
{{end}}{{end}}{{end}}`

const moreHelp = `{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.
{{end}}`

const subcommandUsageTemplate = `Usage:
  {{.UseLine}}
{{if .HasExample}}
Examples:
{{.Example}}
{{end}}
` + flagSections

const rootUsageTemplate = `Usage:
  percept detect <text...> [flags]
  percept detect --file <path> | --subtitle <path>
  percept tag <image> [flags]
{{if .HasAvailableSubCommands}}  {{.CommandPath}} [command]
{{end}}
` + commandList + `
` + flagSections + moreHelp

const envUsageTemplate = `Usage:
  {{.CommandPath}} [command]

` + commandList + `
` + flagSections + moreHelp
