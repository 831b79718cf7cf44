package linear

import (
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestClassifierBinary(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		-1, -1,
		-2, -1,
		1, 1,
		2, 1,
	})
	y := []string{"a", "a", "b", "b"}

	c := NewClassifier(DefaultClassifierConfig())
	if err := c.Fit(X, y); err != nil {
		t.Fatalf("Fit error: %v", err)
	}
	if got := c.Classes(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Classes = %v, want [a b]", got)
	}

	scores, err := c.DecisionFunction(X)
	if err != nil {
		t.Fatalf("DecisionFunction error: %v", err)
	}
	if r, k := scores.Dims(); r != 4 || k != 1 {
		t.Fatalf("scores dims = %dx%d, want 4x1", r, k)
	}
	for i, label := range y {
		score := scores.At(i, 0)
		if label == "b" && score <= 0 {
			t.Errorf("row %d: score %v, want positive for b", i, score)
		}
		if label == "a" && score >= 0 {
			t.Errorf("row %d: score %v, want negative for a", i, score)
		}
	}

	pred, err := c.Predict(X)
	if err != nil {
		t.Fatalf("Predict error: %v", err)
	}
	if !reflect.DeepEqual(pred, y) {
		t.Errorf("Predict = %v, want %v", pred, y)
	}
}

func TestClassifierMulticlass(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{
		1, 0,
		1.2, 0.1,
		0, 1,
		0.1, 1.2,
		-1, -1,
		-1.2, -0.9,
	})
	y := []string{"x", "x", "y", "y", "z", "z"}

	c := NewClassifier(DefaultClassifierConfig())
	if err := c.Fit(X, y); err != nil {
		t.Fatalf("Fit error: %v", err)
	}

	scores, err := c.DecisionFunction(X)
	if err != nil {
		t.Fatalf("DecisionFunction error: %v", err)
	}
	if r, k := scores.Dims(); r != 6 || k != 3 {
		t.Fatalf("scores dims = %dx%d, want 6x3", r, k)
	}

	pred, err := c.Predict(X)
	if err != nil {
		t.Fatalf("Predict error: %v", err)
	}
	if !reflect.DeepEqual(pred, y) {
		t.Errorf("Predict = %v, want %v", pred, y)
	}
}

func TestClassifierClone(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{-1, 1})
	c := NewClassifier(DefaultClassifierConfig())
	if err := c.Fit(X, []string{"a", "b"}); err != nil {
		t.Fatalf("Fit error: %v", err)
	}

	fresh := c.Clone()
	if _, err := fresh.DecisionFunction(X); err == nil {
		t.Error("clone is fitted, want unfitted copy")
	}
	if _, err := c.DecisionFunction(X); err != nil {
		t.Errorf("original lost its fit: %v", err)
	}
}

func TestClassifierErrors(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{1, 2})
	c := NewClassifier(DefaultClassifierConfig())

	if _, err := c.DecisionFunction(X); err == nil {
		t.Error("DecisionFunction before Fit succeeded")
	}
	if err := c.Fit(X, []string{"a", "a"}); err == nil {
		t.Error("Fit with one class succeeded")
	}
	if err := c.Fit(X, []string{"a"}); err == nil {
		t.Error("Fit with mismatched labels succeeded")
	}

	if err := c.Fit(X, []string{"a", "b"}); err != nil {
		t.Fatalf("Fit error: %v", err)
	}
	wide := mat.NewDense(1, 2, []float64{1, 2})
	if _, err := c.DecisionFunction(wide); err == nil {
		t.Error("DecisionFunction with wrong width succeeded")
	}
}
