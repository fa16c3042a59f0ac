package unit_tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"codefactory/internal/services"
)

func TestAcquireSerializesSpellingVariants(t *testing.T) {
	reg := services.NewRepoRegistry()

	lease := reg.Acquire("https://github.com/Acme/API.git")

	acquired := make(chan struct{})
	go func() {
		second := reg.Acquire("git@github.com:acme/api")
		second.Release()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire must block while the lease is held")
	case <-time.After(50 * time.Millisecond):
	}

	lease.Release()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second acquire must proceed once the lease is released")
	}
}

func TestAcquireIndependentRepositories(t *testing.T) {
	reg := services.NewRepoRegistry()

	first := reg.Acquire("https://github.com/acme/api")
	second := reg.Acquire("https://github.com/acme/web")

	assert.NotNil(t, first)
	assert.NotNil(t, second)
	first.Release()
	second.Release()
}

func TestReleaseIsIdempotent(t *testing.T) {
	reg := services.NewRepoRegistry()

	lease := reg.Acquire("https://github.com/acme/api")
	lease.Release()
	lease.Release()

	again := reg.Acquire("https://github.com/acme/api")
	assert.NotNil(t, again)
	again.Release()
}
