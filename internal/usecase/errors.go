package usecase

import (
	"errors"

	"inline-post-bot/internal/domain"
)

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
