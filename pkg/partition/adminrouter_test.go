package partition

import (
	"testing"

	"nvdb2osm/pkg/segment"
)

func TestAdminCodeRouterResolvesAssignedChunk(t *testing.T) {
	router := NewAdminCodeRouter(map[string]int{
		"0180": 0, // Stockholm
		"1480": 1, // Göteborg
	})

	idx, ok := router.ChunkFor(segment.Properties{"Kommu_141": segment.String("1480")})
	if !ok || idx != 1 {
		t.Fatalf("ChunkFor(1480) = %d, %v, want 1, true", idx, ok)
	}
}

func TestAdminCodeRouterRejectsUnassignedCode(t *testing.T) {
	router := NewAdminCodeRouter(map[string]int{"0180": 0})
	if _, ok := router.ChunkFor(segment.Properties{"Kommu_141": segment.String("9999")}); ok {
		t.Error("a code with no chunk assignment should not resolve")
	}
}

func TestAdminCodeRouterRejectsMissingColumn(t *testing.T) {
	router := NewAdminCodeRouter(map[string]int{"0180": 0})
	if _, ok := router.ChunkFor(segment.Properties{}); ok {
		t.Error("a segment with no Kommu_141 column should not resolve")
	}
}
