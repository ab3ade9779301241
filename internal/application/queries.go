package application

import (
	"time"

	"github.com/Dephilia/rpoaurk/internal/domain"
)

type Status struct {
	ConsumerKey  string
	Stage        domain.AuthStage
	AuthorizedAt time.Time
	KeysPath     string
	FromEnv      bool
}
