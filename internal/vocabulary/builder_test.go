package vocabulary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crimson-sun/subtext/internal/model"
)

func writeCorpus(t *testing.T, texts []string) string {
	t.Helper()
	var b strings.Builder
	for _, text := range texts {
		fmt.Fprintf(&b, "{\"text\": %q}\n", text)
	}
	path := filepath.Join(t.TempDir(), "corpus.json")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// Four frequent azul records plus six rare verbs sharing the r~ suffix. With
// a two-slot budget the shared suffix must out-earn every rare word.
func suffixCorpus(t *testing.T) string {
	t.Helper()
	return writeCorpus(t, []string{
		"azul", "azul", "azul", "azul",
		"amar", "bailar", "cantar", "saltar", "sumar", "volar",
	})
}

func testParams() model.Params {
	p := model.DefaultParams("es")
	p.SizeExponent = 1
	p.TokenList = []int{-1, 2}
	return p
}

func TestBuildPromotesSharedSuffix(t *testing.T) {
	b := NewBuilder(testParams())
	voc, err := b.Build(context.Background(), suffixCorpus(t))
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if got := voc.Counter.Len(); got != 2 {
		t.Fatalf("vocabulary size = %d, want 2", got)
	}
	// Corpus-wide frequencies from the final pass, not refinement credits:
	// every verb record ends in r~, azul appears in four records.
	if got := voc.Counter.Count("q:r~"); got != 6 {
		t.Errorf("count(q:r~) = %d, want 6", got)
	}
	if got := voc.Counter.Count("azul"); got != 4 {
		t.Errorf("count(azul) = %d, want 4", got)
	}
	if got := voc.Counter.UpdateCalls(); got != 10 {
		t.Errorf("update calls = %d, want 10", got)
	}
}

func TestBuildRejectAllAdmitKeepsWordsOnly(t *testing.T) {
	b := NewBuilder(testParams(), WithAdmitFunc(func(string) bool { return false }))
	voc, err := b.Build(context.Background(), suffixCorpus(t))
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	for _, tc := range voc.Counter.MostCommon(0) {
		if strings.HasPrefix(tc.Label, model.QGramPrefix) {
			t.Errorf("q-gram %q admitted despite reject-all filter", tc.Label)
		}
	}
	if got := voc.Counter.Count("azul"); got != 4 {
		t.Errorf("count(azul) = %d, want 4", got)
	}
	if got := voc.Counter.Count("amar"); got != 1 {
		t.Errorf("count(amar) = %d, want 1", got)
	}
}

func TestBuildRespectsLimit(t *testing.T) {
	b := NewBuilder(testParams(), WithLimit(4))
	voc, err := b.Build(context.Background(), suffixCorpus(t))
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if got := voc.Counter.Len(); got != 1 {
		t.Fatalf("vocabulary size = %d, want 1", got)
	}
	if got := voc.Counter.Count("azul"); got != 4 {
		t.Errorf("count(azul) = %d, want 4", got)
	}
	if got := voc.Counter.UpdateCalls(); got != 4 {
		t.Errorf("update calls = %d, want 4", got)
	}
}

func TestBuildManyWorkersMatchesSerial(t *testing.T) {
	path := suffixCorpus(t)
	serial, err := NewBuilder(testParams(), WithWorkers(1)).Build(context.Background(), path)
	if err != nil {
		t.Fatalf("serial Build error: %v", err)
	}
	parallel, err := NewBuilder(testParams(), WithWorkers(8)).Build(context.Background(), path)
	if err != nil {
		t.Fatalf("parallel Build error: %v", err)
	}

	if serial.Counter.Len() != parallel.Counter.Len() {
		t.Fatalf("sizes differ: %d vs %d", serial.Counter.Len(), parallel.Counter.Len())
	}
	for _, tc := range serial.Counter.MostCommon(0) {
		if got := parallel.Counter.Count(tc.Label); got != tc.Count {
			t.Errorf("count(%s) = %d with 8 workers, want %d", tc.Label, got, tc.Count)
		}
	}
}

func TestBaseCountDeduplicatesPerRecord(t *testing.T) {
	path := writeCorpus(t, []string{"pan pan", "pan"})
	cnt, err := BaseCount(context.Background(), path, 0, testParams())
	if err != nil {
		t.Fatalf("BaseCount error: %v", err)
	}

	if got := cnt.Count("pan"); got != 2 {
		t.Errorf("count(pan) = %d, want 2 (once per record)", got)
	}
	if got := cnt.Count("q:an"); got != 2 {
		t.Errorf("count(q:an) = %d, want 2", got)
	}
	if got := cnt.UpdateCalls(); got != 2 {
		t.Errorf("update calls = %d, want 2", got)
	}
}

func TestBaseCountCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := BaseCount(ctx, suffixCorpus(t), 0, testParams())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestDefaultAdmit(t *testing.T) {
	tests := []struct {
		gram string
		want bool
	}{
		{"a", true},
		{"~", true},
		{"a~", true},
		{"~a", false},
		{"ab", false},
		{"ab~", true},
		{"~ab", false},
		{"abc", false},
		{"abcd", true},
		{"~abc", true},
	}
	for _, tc := range tests {
		if got := DefaultAdmit(tc.gram); got != tc.want {
			t.Errorf("DefaultAdmit(%q) = %v, want %v", tc.gram, got, tc.want)
		}
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	for _, name := range []string{"voc.json", "voc.json.gz"} {
		t.Run(name, func(t *testing.T) {
			cnt := model.NewCounter()
			cnt.Set("azul", 4)
			cnt.Set("q:r~", 6)
			cnt.SetUpdateCalls(10)
			voc := &model.Vocabulary{Params: testParams(), Counter: cnt}

			path := filepath.Join(t.TempDir(), name)
			if err := Save(voc, path); err != nil {
				t.Fatalf("Save error: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if got.Identifier() != voc.Identifier() {
				t.Errorf("identifier = %s, want %s", got.Identifier(), voc.Identifier())
			}
			if got.Counter.Count("q:r~") != 6 || got.Counter.UpdateCalls() != 10 {
				t.Errorf("counter not preserved: %+v", got.Counter)
			}
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"garbage", "not json\n"},
		{"no tokens", `{"params": {"lang": "es", "voc_size_exponent": 1}, "counter": {"dict": {}, "update_calls": 0}}` + "\n"},
		{"over budget", `{"params": {"lang": "es", "voc_size_exponent": 1}, "counter": {"dict": {"a": 3, "b": 2, "c": 1}, "update_calls": 3}}` + "\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "voc.json")
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, model.ErrMalformedArtifact) {
				t.Fatalf("err = %v, want ErrMalformedArtifact", err)
			}
		})
	}
}
