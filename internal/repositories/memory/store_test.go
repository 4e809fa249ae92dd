package memory

import (
	"math"
	"testing"

	"github.com/ArowuTest/memebox-backend/internal/repositories"
	"github.com/ArowuTest/memebox-backend/internal/repositories/repotest"
)

func TestConformance(t *testing.T) {
	repotest.RunConformance(t, repotest.Backend{
		Open:       func(*testing.T) *repositories.Store { return NewStore() },
		MaxBalance: math.MaxUint64,
	})
}
