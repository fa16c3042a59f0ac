package mocks

import (
	"context"

	"codefactory/internal/models"
)

type GeneratorMock struct {
	GenerateFunc func(ctx context.Context, system, user string) (models.FileSet, error)
}

func (m *GeneratorMock) Generate(ctx context.Context, system, user string) (models.FileSet, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, system, user)
	}
	return models.FileSet{}, nil
}
