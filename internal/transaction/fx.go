package transaction

import (
	"github.com/clearvia/payops/internal/transaction/provider"
	"go.uber.org/fx"
)

var Module = fx.Module("transaction",
	fx.Provide(provider.New),
)
