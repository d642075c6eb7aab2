package language

import (
	"strings"
	"testing"

	"golang.org/x/text/language"
)

func newTestDetector(t *testing.T, opts Options) *NgramDetector {
	t.Helper()
	if opts.Locale == language.Und {
		opts.Locale = language.English
	}
	d, err := NewDetector(opts)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}
	return d
}

func TestDetect_EmptyAndWhitespace(t *testing.T) {
	d := newTestDetector(t, Options{})
	for _, input := range []string{"", " ", "\t\n", "   \r\n  ", "  "} {
		got := d.Detect(input)
		if got != UndeterminedResult() {
			t.Fatalf("Detect(%q) = %+v, want undetermined", input, got)
		}
	}
}

func TestDetect_NoLetters(t *testing.T) {
	d := newTestDetector(t, Options{})
	for _, input := range []string{"12345", "!!! ??? ...", "3.14 + 2.71 = 5.85", "🙂🙂🙂"} {
		if got := d.Detect(input); !got.IsUndetermined() {
			t.Fatalf("Detect(%q) = %+v, want undetermined", input, got)
		}
	}
}

func TestDetect_EndToEnd(t *testing.T) {
	d := newTestDetector(t, Options{})

	got := d.Detect("Bonjour tout le monde")
	if got.Code != "fr" || got.DisplayName != "French" {
		t.Fatalf("Detect(French) = %+v, want {fr French}", got)
	}

	got = d.Detect("The quick brown fox jumps over the lazy dog")
	if got.Code != "en" || got.DisplayName != "English" {
		t.Fatalf("Detect(pangram) = %+v, want {en English}", got)
	}

	got = d.Detect("")
	if got.Code != "undetermined" || got.DisplayName != "unable to detect" {
		t.Fatalf("Detect(empty) = %+v", got)
	}
}

func TestDetect_SwedishDanishGreetings(t *testing.T) {
	d := newTestDetector(t, Options{})
	tests := []struct {
		text string
		want string
	}{
		{"God morgon, hur mår du?", "sv"},
		{"Tack för maten, det var jättegott.", "sv"},
		{"Godmorgen, hvordan har du det?", "da"},
		{"Tak for mad, det var rigtig lækkert.", "da"},
	}
	for _, tt := range tests {
		if got := d.Detect(tt.text); got.Code != tt.want {
			t.Errorf("Detect(%q) = %+v, want %s", tt.text, got, tt.want)
		}
	}
}

func TestDetect_Idempotent(t *testing.T) {
	d := newTestDetector(t, Options{})
	inputs := []string{
		"Bonjour tout le monde",
		"Ich habe heute keine Zeit",
		"今日はいい天気ですね",
		"",
		"???",
	}
	for _, input := range inputs {
		first := d.Detect(input)
		second := d.Detect(input)
		if first != second {
			t.Fatalf("Detect(%q) not idempotent: %+v vs %+v", input, first, second)
		}
	}
}

func TestDetect_ConfidenceFloor(t *testing.T) {
	d := newTestDetector(t, Options{MinConfidence: 1.5})
	if got := d.Detect("Bonjour tout le monde"); !got.IsUndetermined() {
		t.Fatalf("expected undetermined above an unreachable floor, got %+v", got)
	}
}

func TestDetect_LocalizedDisplayName(t *testing.T) {
	d := newTestDetector(t, Options{Locale: language.German})
	got := d.Detect("Bonjour tout le monde")
	if got.Code != "fr" {
		t.Fatalf("Code = %q, want fr", got.Code)
	}
	if got.DisplayName != "Französisch" {
		t.Fatalf("DisplayName = %q, want Französisch", got.DisplayName)
	}
}

func TestDetect_LongInputIsTruncated(t *testing.T) {
	d := newTestDetector(t, Options{MaxGraphemes: 200})
	text := strings.Repeat("Where is the nearest train station, please? ", 1000)
	got := d.Detect(text)
	if got.Code != "en" {
		t.Fatalf("Detect(long) = %+v, want en", got)
	}
}

// corpus holds one or more samples per language. None of the sentences appear
// in the training profiles.
var corpus = []struct {
	code string
	text string
}{
	{"en", "Where is the nearest train station, please?"},
	{"en", "I would like a cup of coffee and a piece of cake."},
	{"fr", "Je voudrais une tasse de café, s'il vous plaît."},
	{"fr", "Nous avons passé une très belle soirée avec nos amis."},
	{"de", "Ich habe heute keine Zeit, aber morgen komme ich gerne vorbei."},
	{"de", "Wo ist der nächste Bahnhof, bitte?"},
	{"es", "¿Dónde está la estación de tren más cercana?"},
	{"es", "Me gustaría tomar un café con leche, por favor."},
	{"it", "Dov'è la stazione più vicina, per favore?"},
	{"it", "Vorrei un caffè e un bicchiere d'acqua, grazie."},
	{"pt", "Onde fica a estação de comboios mais próxima?"},
	{"pt", "Eu gostaria de um café com leite, por favor."},
	{"nl", "Waar is het dichtstbijzijnde station, alstublieft?"},
	{"nl", "Ik wil graag een kopje koffie en een stuk taart."},
	{"sv", "Var ligger den närmaste järnvägsstationen?"},
	{"sv", "Jag skulle vilja ha en kopp kaffe och en bit tårta."},
	{"da", "Hvor er den nærmeste togstation?"},
	{"da", "Jeg vil gerne have en kop kaffe og et stykke kage."},
	{"fi", "Missä on lähin rautatieasema?"},
	{"fi", "Haluaisin kupin kahvia ja palan kakkua."},
	{"pl", "Gdzie jest najbliższa stacja kolejowa?"},
	{"pl", "Poproszę filiżankę kawy i kawałek ciasta."},
	{"cs", "Kde je nejbližší vlakové nádraží?"},
	{"cs", "Dal bych si šálek kávy a kousek dortu."},
	{"hu", "Hol van a legközelebbi vasútállomás?"},
	{"hu", "Kérek egy csésze kávét és egy szelet tortát."},
	{"ro", "Unde este cea mai apropiată gară?"},
	{"ro", "Aș dori o ceașcă de cafea și o felie de tort."},
	{"tr", "En yakın tren istasyonu nerede?"},
	{"tr", "Bir fincan kahve ve bir dilim pasta istiyorum."},
	{"id", "Di mana stasiun kereta api terdekat?"},
	{"id", "Saya mau secangkir kopi dan sepotong kue."},
	{"vi", "Ga tàu gần nhất ở đâu?"},
	{"vi", "Tôi muốn một tách cà phê và một miếng bánh."},
	{"ru", "Где находится ближайший вокзал?"},
	{"ru", "Я хотел бы чашку кофе и кусок торта."},
	{"uk", "Де знаходиться найближчий вокзал?"},
	{"uk", "Я хотів би чашку кави і шматок торта."},
	{"el", "Καλημέρα, τι κάνετε σήμερα;"},
	{"he", "שלום, מה שלומך היום?"},
	{"ar", "مرحبا، كيف حالك اليوم؟"},
	{"fa", "سلام، حال شما چطور است؟"},
	{"ja", "今日はいい天気ですね。"},
	{"zh", "我们明天去北京看朋友。"},
	{"ko", "안녕하세요, 만나서 반갑습니다."},
	{"th", "สวัสดีครับ ยินดีที่ได้รู้จัก"},
	{"hi", "नमस्ते, आप कैसे हैं?"},
	{"hy", "Բարև, ինչպես ես։"},
	{"ka", "გამარჯობა, როგორ ხარ?"},
}

func TestDetect_CorpusAccuracy(t *testing.T) {
	d := newTestDetector(t, Options{})

	languages := make(map[string]bool)
	correct := 0
	for _, sample := range corpus {
		languages[sample.code] = true
		got := d.Detect(sample.text)
		if got.Code == sample.code {
			correct++
			continue
		}
		t.Logf("miss: %q detected as %q (%.3f), want %q", sample.text, got.Code, got.Confidence, sample.code)
	}
	if len(languages) < 20 {
		t.Fatalf("corpus covers %d languages, want at least 20", len(languages))
	}
	accuracy := float64(correct) / float64(len(corpus))
	if accuracy < 0.95 {
		t.Fatalf("top-1 accuracy = %.3f (%d/%d), want >= 0.95", accuracy, correct, len(corpus))
	}
}

func TestTruncateGraphemes(t *testing.T) {
	cases := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "shorter", in: "abc", max: 5, want: "abc"},
		{name: "exact", in: "abc", max: 3, want: "abc"},
		{name: "cut", in: "abcdef", max: 2, want: "ab"},
		{name: "combining", in: "ééé", max: 2, want: "éé"},
		{name: "disabled", in: "abcdef", max: 0, want: "abcdef"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := truncateGraphemes(tc.in, tc.max); got != tc.want {
				t.Fatalf("truncateGraphemes(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
			}
		})
	}
}
