package tokenizer

import (
	"math"
	"reflect"
	"testing"

	"github.com/crimson-sun/subtext/internal/model"
)

func testVocabulary(t *testing.T, records int64, freqs map[string]int64) *model.Vocabulary {
	t.Helper()
	c := model.NewCounter()
	for label, n := range freqs {
		c.Add(label, n)
	}
	c.SetUpdateCalls(records)
	return &model.Vocabulary{Params: model.DefaultParams("es"), Counter: c}
}

func TestTokenizeSubwordScenario(t *testing.T) {
	voc := testVocabulary(t, 100, map[string]int64{
		"buenos": 20,
		"dias":   18,
		"q:~mx":  9,
		"q:ei":   7,
		"q:co~":  5,
	})
	tok, err := New(voc)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	got := tok.Tokenize("buenos dias mxeico")
	want := []string{"buenos", "dias", "q:~mx", "q:ei", "q:co~"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenizeWholeWordsShareBoundaries(t *testing.T) {
	voc := testVocabulary(t, 10, map[string]int64{"buenos": 5, "dias": 4})
	tok, err := New(voc)
	if err != nil {
		t.Fatal(err)
	}

	got := tok.Tokenize("buenos dias buenos")
	want := []string{"buenos", "dias", "buenos"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	voc := testVocabulary(t, 50, map[string]int64{
		"hola": 9, "q:~ho": 3, "q:la~": 3, "q:ol": 2,
	})
	tok, err := New(voc)
	if err != nil {
		t.Fatal(err)
	}

	first := tok.Tokenize("hola holas")
	for i := 0; i < 20; i++ {
		if got := tok.Tokenize("hola holas"); !reflect.DeepEqual(got, first) {
			t.Fatalf("Tokenize not deterministic: %v vs %v", got, first)
		}
	}
}

func TestTokenIDsFollowFrequencyOrder(t *testing.T) {
	voc := testVocabulary(t, 100, map[string]int64{
		"alta": 30, "media": 20, "q:ba": 10,
	})
	tok, err := New(voc)
	if err != nil {
		t.Fatal(err)
	}

	names := tok.Names()
	want := []string{"alta", "media", "q:ba"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Names = %v, want %v", names, want)
	}
	for i, name := range names {
		id, ok := tok.TokenID(name)
		if !ok || id != i {
			t.Errorf("TokenID(%q) = %d,%v, want %d", name, id, ok, i)
		}
	}
}

func TestIDsDropOutOfVocabulary(t *testing.T) {
	voc := testVocabulary(t, 10, map[string]int64{"hola": 5, "adios": 3})
	tok, err := New(voc)
	if err != nil {
		t.Fatal(err)
	}

	got := tok.IDs([]string{"hola", "nunca", "adios", "hola"})
	want := []int{0, 1, 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("IDs = %v, want %v", got, want)
	}
}

func TestIDFWeights(t *testing.T) {
	voc := testVocabulary(t, 64, map[string]int64{"comun": 32, "raro": 2})
	tok, err := New(voc)
	if err != nil {
		t.Fatal(err)
	}

	w := tok.IDFWeights()
	if got := w[0]; math.Abs(got-1) > 1e-12 {
		t.Errorf("IDF(comun) = %v, want 1", got)
	}
	if got := w[1]; math.Abs(got-5) > 1e-12 {
		t.Errorf("IDF(raro) = %v, want 5", got)
	}
}

func TestWordSurfaceOverridesQGram(t *testing.T) {
	// The 3-gram "~a~" and the word "a" register the same surface; the word
	// wins regardless of frequency order.
	voc := testVocabulary(t, 100, map[string]int64{"q:~a~": 50, "a": 10})
	tok, err := New(voc)
	if err != nil {
		t.Fatal(err)
	}

	got := tok.Tokenize("a")
	if !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Tokenize(a) = %v, want [a]", got)
	}
}

func TestSymbolVariantsCanonicalize(t *testing.T) {
	voc := testVocabulary(t, 10, map[string]int64{"hola": 5})
	tok, err := New(voc)
	if err != nil {
		t.Fatal(err)
	}

	got := tok.Tokenize("🤣🤣")
	if !reflect.DeepEqual(got, []string{"🤣", "🤣"}) {
		t.Errorf("Tokenize(🤣🤣) = %v, want [🤣 🤣]", got)
	}

	got = tok.Tokenize("hola 🤣")
	if !reflect.DeepEqual(got, []string{"hola", "🤣"}) {
		t.Errorf("Tokenize(hola 🤣) = %v, want [hola 🤣]", got)
	}
}

func TestNewRejectsInvalidVocabulary(t *testing.T) {
	voc := &model.Vocabulary{Params: model.DefaultParams("es")}
	if _, err := New(voc); err == nil {
		t.Error("New accepted a vocabulary with no counter")
	}
}

func TestTokenizerMetadata(t *testing.T) {
	voc := testVocabulary(t, 42, map[string]int64{"hola": 5, "adios": 3})
	tok, err := New(voc)
	if err != nil {
		t.Fatal(err)
	}
	if tok.Dim() != 2 {
		t.Errorf("Dim = %d, want 2", tok.Dim())
	}
	if tok.Records() != 42 {
		t.Errorf("Records = %d, want 42", tok.Records())
	}
	if tok.Identifier() != "subtext_es_13" {
		t.Errorf("Identifier = %q", tok.Identifier())
	}
}
