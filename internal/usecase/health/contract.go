package health

import (
	"context"

	"github.com/kailas-cloud/stockdex/internal/domain/brand"
)

// DBPinger checks store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// AliasStatus reports the active alias table.
type AliasStatus interface {
	Status() brand.Status
}
