package feeapplication

import (
	"github.com/clearvia/payops/internal/feeapplication/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("feeapplication",
	fx.Provide(repository.Provide),
)
