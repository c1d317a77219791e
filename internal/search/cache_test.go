package search

import (
	"testing"

	"github.com/hyperjump/semspace/internal/models"
)

func TestResultCache_GetSet(t *testing.T) {
	c := NewResultCache(2)
	if v, ok := c.Get("a"); ok || v != nil {
		t.Fatal("expected miss")
	}
	c.Set("a", &models.SearchResponse{Query: "a"})
	v, ok := c.Get("a")
	if !ok || v.Query != "a" {
		t.Errorf("Get: got %v, %v", v, ok)
	}
	c.Set("b", &models.SearchResponse{Query: "b"})
	c.Set("c", &models.SearchResponse{Query: "c"}) // evicts a
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected b to remain")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to be present")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestResultCache_Disabled(t *testing.T) {
	if NewResultCache(0) != nil {
		t.Error("zero capacity should disable the cache")
	}
	var c *ResultCache
	if c.Len() != 0 {
		t.Error("nil cache should be empty")
	}
	if h, m := c.Stats(); h != 0 || m != 0 {
		t.Errorf("nil cache stats = %d/%d", h, m)
	}
}
