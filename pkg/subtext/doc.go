// Package subtext builds compact sub-word vocabularies from raw corpora
// and embeds text with per-token linear classifiers trained over them.
//
// Quick start, loading a trained model:
//
//	m, err := subtext.Open("es_model.json.gz")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vec := m.Vector("la lluvia en sevilla")
//
// Building a model from scratch is a two-step pipeline over a
// newline-delimited JSON corpus ({"text": ...} per line):
//
//	err := subtext.BuildVocabulary(ctx, "corpus.json", "voc.json.gz",
//	    subtext.WithLanguage("es"))
//	sum, err := subtext.Train(ctx, "corpus.json", "voc.json.gz", "model.json.gz")
//
// A Model is read-only after Open and safe for concurrent use. Fit installs
// a downstream classifier on the instance and needs external
// synchronization if the model is shared.
package subtext
