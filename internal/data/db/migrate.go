package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/rateio-sync-backend/internal/domain"
)

// ApplyFunctionName is the stored procedure that applies one reconciliation batch.
const ApplyFunctionName = "rateio_claro_apply"

// AutoMigrateSync creates the tables this service owns. The hub and profile tables belong
// to the dashboard; they are only created when includeShared is set (local development).
func AutoMigrateSync(db *gorm.DB, includeShared bool) error {
	models := []any{
		&types.SyncOverride{},
		&types.SyncLog{},
	}
	if includeShared {
		models = append(models, &types.HubLine{}, &types.Profile{})
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_rateio_claro_sync_logs_user_created ON rateio_claro_sync_logs(user_id, created_at DESC);`).Error; err != nil {
		return fmt.Errorf("sync log index: %w", err)
	}
	if err := db.Exec(applyFunctionSQL).Error; err != nil {
		return fmt.Errorf("create %s: %w", ApplyFunctionName, err)
	}
	return nil
}

const applyFunctionSQL = `
CREATE OR REPLACE FUNCTION rateio_claro_apply(p_inserts jsonb, p_updates jsonb, p_inactivations jsonb)
RETURNS TABLE(inserted integer, updated integer, inactivated integer)
LANGUAGE plpgsql AS $$
DECLARE
	v_inserted integer := 0;
	v_updated integer := 0;
	v_inactivated integer := 0;
BEGIN
	INSERT INTO rateio_claro_linhas (id, nome, numero_linha, status, user_id, created_at, updated_at)
	SELECT gen_random_uuid(), r.nome, r.numero_linha, 'active', r.user_id, now(), now()
	FROM jsonb_to_recordset(COALESCE(p_inserts, '[]'::jsonb)) AS r(nome text, numero_linha text, user_id uuid);
	GET DIAGNOSTICS v_inserted = ROW_COUNT;

	UPDATE rateio_claro_linhas h
	SET nome = r.nome, status = 'active', updated_at = now()
	FROM jsonb_to_recordset(COALESCE(p_updates, '[]'::jsonb)) AS r(id uuid, nome text)
	WHERE h.id = r.id;
	GET DIAGNOSTICS v_updated = ROW_COUNT;

	UPDATE rateio_claro_linhas h
	SET status = 'inactive', updated_at = now()
	FROM jsonb_to_recordset(COALESCE(p_inactivations, '[]'::jsonb)) AS r(id uuid)
	WHERE h.id = r.id AND h.status IS DISTINCT FROM 'inactive';
	GET DIAGNOSTICS v_inactivated = ROW_COUNT;

	RETURN QUERY SELECT v_inserted, v_updated, v_inactivated;
END;
$$;`
