package migrations

import (
	"fmt"

	"order_tracker/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// auditModels lists every table the tracker owns.
var auditModels = []interface{}{
	&models.LookupLog{},
}

// RunMigrations creates or updates the lookup audit tables. With reset the
// existing tables are dropped first.
func RunMigrations(db *gorm.DB, reset bool) error {
	log := zap.L().Named("migrations")
	migrator := db.Migrator()

	if reset {
		for _, model := range auditModels {
			if !migrator.HasTable(model) {
				continue
			}
			log.Info("dropping table", zap.String("model", fmt.Sprintf("%T", model)))
			if err := migrator.DropTable(model); err != nil {
				return fmt.Errorf("failed to drop %T: %w", model, err)
			}
		}
	}

	if err := db.AutoMigrate(auditModels...); err != nil {
		return fmt.Errorf("failed to migrate audit tables: %w", err)
	}

	log.Info("audit tables ready", zap.Int("tables", len(auditModels)), zap.Bool("reset", reset))
	return nil
}
