package feed

import (
	"errors"
	"strings"
	"testing"
)

func TestVerifierAcceptsGeneratedFeed(t *testing.T) {
	doc := sampleDocument()

	data, err := NewGenerator().Run(doc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if err := NewVerifier().Run(data, doc); err != nil {
		t.Errorf("Expected generated feed to verify, got: %v", err)
	}
}

func TestVerifierAcceptsEmptyFeed(t *testing.T) {
	doc := sampleDocument()
	doc.Items = nil

	data, err := NewGenerator().Run(doc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if err := NewVerifier().Run(data, doc); err != nil {
		t.Errorf("Expected empty feed to verify, got: %v", err)
	}
}

func TestVerifierRejectsItemMismatch(t *testing.T) {
	doc := sampleDocument()

	data, err := NewGenerator().Run(doc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	doc.Items = doc.Items[:1]
	err = NewVerifier().Run(data, doc)
	if !errors.Is(err, ErrVerification) {
		t.Errorf("Expected ErrVerification, got: %v", err)
	}
}

func TestVerifierRejectsGarbage(t *testing.T) {
	err := NewVerifier().Run([]byte("not a feed"), sampleDocument())
	if !errors.Is(err, ErrVerification) {
		t.Errorf("Expected ErrVerification, got: %v", err)
	}
}

func TestVerifierRejectsAtom(t *testing.T) {
	atom := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Feed</title>
</feed>`

	err := NewVerifier().Run([]byte(atom), sampleDocument())
	if !errors.Is(err, ErrVerification) || !strings.Contains(err.Error(), "atom") {
		t.Errorf("Expected ErrVerification mentioning atom, got: %v", err)
	}
}
