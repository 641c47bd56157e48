package service

import (
	"github.com/allisson/tokenvault/internal/tokenization/domain"
)

// GeneratorFactory returns the token value generator matching a token type.
type GeneratorFactory struct {
	random           TokenValueGenerator
	formatPreserving TokenValueGenerator
	sequential       TokenValueGenerator
}

func NewGeneratorFactory(store SequenceStore, sequentialStart int64) *GeneratorFactory {
	return &GeneratorFactory{
		random:           NewRandomGenerator(),
		formatPreserving: NewFormatPreservingGenerator(),
		sequential:       NewSequentialGenerator(store, sequentialStart),
	}
}

func (f *GeneratorFactory) ForType(tokenType domain.TokenType) (TokenValueGenerator, error) {
	switch tokenType {
	case domain.TypeRandom:
		return f.random, nil
	case domain.TypeFormatPreserving:
		return f.formatPreserving, nil
	case domain.TypeSequential:
		return f.sequential, nil
	default:
		return nil, domain.ErrInvalidTokenType
	}
}
