package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE automations (
				id VARCHAR(64) PRIMARY KEY,
				organization_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				trigger VARCHAR(50) NOT NULL,
				actions JSONB NOT NULL DEFAULT '[]',
				is_active BOOLEAN NOT NULL DEFAULT false,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_automations_org_trigger
				ON automations(organization_id, trigger)
				WHERE deleted_at IS NULL AND is_active;
			CREATE INDEX idx_automations_org ON automations(organization_id);
			CREATE INDEX idx_automations_created_at ON automations(created_at);
		`,
		2: `
			CREATE TABLE automation_runs (
				id VARCHAR(64) PRIMARY KEY,
				automation_id VARCHAR(64) NOT NULL,
				organization_id VARCHAR(255) NOT NULL,
				trigger VARCHAR(50) NOT NULL,
				status VARCHAR(20) NOT NULL,
				results JSONB NOT NULL DEFAULT '[]',
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				finished_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_automation_runs_org ON automation_runs(organization_id, started_at DESC);
			CREATE INDEX idx_automation_runs_finished_at ON automation_runs(finished_at);
		`,
	}
}
