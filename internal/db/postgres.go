package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/types"
	"github.com/refera/refera-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "refera", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.RevokedToken{},
		&types.Group{},
		&types.GroupMember{},
		&types.Library{},
		&types.Collection{},
		&types.Item{},
		&types.ItemRelation{},
		&types.Attachment{},
		&types.AttachmentType{},
		&types.Note{},
		&types.Tag{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		name string
		ddl  string
	}{
		{"fk_revoked_token_user_id", `ALTER TABLE "revoked_token" ADD CONSTRAINT "fk_revoked_token_user_id" FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"fk_group_member_group_id", `ALTER TABLE "group_member" ADD CONSTRAINT "fk_group_member_group_id" FOREIGN KEY ("group_id") REFERENCES "group"("id") ON DELETE CASCADE`},
		{"fk_group_member_user_id", `ALTER TABLE "group_member" ADD CONSTRAINT "fk_group_member_user_id" FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"fk_library_owner_id", `ALTER TABLE "library" ADD CONSTRAINT "fk_library_owner_id" FOREIGN KEY ("owner_id") REFERENCES "user"("id")`},
		{"fk_collection_parent_id", `ALTER TABLE "collection" ADD CONSTRAINT "fk_collection_parent_id" FOREIGN KEY ("parent_id") REFERENCES "library"("id")`},
		{"fk_item_parent_id", `ALTER TABLE "item" ADD CONSTRAINT "fk_item_parent_id" FOREIGN KEY ("parent_id") REFERENCES "collection"("id")`},
		{"fk_item_library_id", `ALTER TABLE "item" ADD CONSTRAINT "fk_item_library_id" FOREIGN KEY ("library_id") REFERENCES "library"("id")`},
		{"fk_item_relation_item_id", `ALTER TABLE "item_relation" ADD CONSTRAINT "fk_item_relation_item_id" FOREIGN KEY ("item_id") REFERENCES "item"("id") ON DELETE CASCADE`},
		{"fk_attachment_parent_id", `ALTER TABLE "attachment" ADD CONSTRAINT "fk_attachment_parent_id" FOREIGN KEY ("parent_id") REFERENCES "item"("id")`},
		{"fk_attachment_type_id", `ALTER TABLE "attachment" ADD CONSTRAINT "fk_attachment_type_id" FOREIGN KEY ("type_id") REFERENCES "attachment_type"("id")`},
		{"fk_tag_item_id", `ALTER TABLE "tag" ADD CONSTRAINT "fk_tag_item_id" FOREIGN KEY ("item_id") REFERENCES "item"("id") ON DELETE CASCADE`},
	}
	for _, c := range constraints {
		var exists bool
		if err := s.db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, c.name).Scan(&exists).Error; err != nil {
			return fmt.Errorf("failed to check constraint %s: %w", c.name, err)
		}
		if exists {
			continue
		}
		if err := s.db.Exec(c.ddl).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
