// Package schema holds the Postgres DDL behind the data API.
//
// The web process never executes it: tables are reached over HTTP through
// the data API, and cmd/migrate applies these statements once per project.
package schema

import "fmt"

// TableDefinitions contains all the SQL statements to create the database tables.
// Owner columns reference auth.users so deleting an account removes its rows.
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY REFERENCES auth.users(id) ON DELETE CASCADE,
		email VARCHAR(255) NOT NULL,
		full_name VARCHAR(255),
		phone VARCHAR(50),
		theme VARCHAR(20) NOT NULL DEFAULT 'system',
		brokerage_name VARCHAR(255),
		brokerage_address TEXT,
		license_number VARCHAR(100),
		gmail_connected BOOLEAN NOT NULL DEFAULT FALSE,
		gmail_email VARCHAR(255),
		gmail_access_token TEXT,
		gmail_refresh_token TEXT,
		gmail_token_expiry TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES auth.users(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255),
		phone VARCHAR(50),
		type VARCHAR(20) NOT NULL DEFAULT 'buyer',
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES auth.users(id) ON DELETE CASCADE,
		property_address TEXT NOT NULL,
		city VARCHAR(100),
		state VARCHAR(50),
		zip_code VARCHAR(20),
		mls_number VARCHAR(50),
		status VARCHAR(20) NOT NULL DEFAULT 'prospecting',
		type VARCHAR(20) NOT NULL DEFAULT 'buyer',
		client_id UUID REFERENCES clients(id) ON DELETE SET NULL,
		list_price NUMERIC(14, 2),
		sales_price NUMERIC(14, 2),
		commission_rate NUMERIC(5, 3),
		listing_date DATE,
		contract_date DATE,
		close_date DATE,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	itemTable("checklist_items"),
	itemTable("disclosure_items"),
	itemTable("task_items"),
	`CREATE TABLE IF NOT EXISTS calendar_events (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES auth.users(id) ON DELETE CASCADE,
		transaction_id UUID REFERENCES transactions(id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		location TEXT,
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ,
		all_day BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS email_history (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES auth.users(id) ON DELETE CASCADE,
		transaction_id UUID REFERENCES transactions(id) ON DELETE SET NULL,
		client_id UUID REFERENCES clients(id) ON DELETE SET NULL,
		template_id UUID,
		direction VARCHAR(10) NOT NULL DEFAULT 'sent',
		from_address VARCHAR(255) NOT NULL,
		to_addresses TEXT[] NOT NULL,
		cc_addresses TEXT[],
		subject TEXT NOT NULL,
		body TEXT NOT NULL,
		thread_id VARCHAR(255),
		sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS disclosure_templates (
		id UUID PRIMARY KEY,
		document_name VARCHAR(255) NOT NULL,
		category VARCHAR(100),
		description TEXT,
		required BOOLEAN NOT NULL DEFAULT TRUE,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS task_templates (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		section VARCHAR(100),
		description TEXT,
		due_offset_days INTEGER,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS email_templates (
		id UUID PRIMARY KEY,
		user_id UUID REFERENCES auth.users(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		category VARCHAR(100),
		subject TEXT NOT NULL,
		body TEXT NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// TableNames lists the tables in creation order
var TableNames = []string{
	"profiles",
	"clients",
	"transactions",
	"checklist_items",
	"disclosure_items",
	"task_items",
	"calendar_events",
	"email_history",
	"disclosure_templates",
	"task_templates",
	"email_templates",
}

// IndexDefinitions back the filters the repositories send
var IndexDefinitions = []string{
	`CREATE INDEX IF NOT EXISTS idx_clients_user_id ON clients(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_user_status ON transactions(user_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_close_date ON transactions(close_date)`,
	`CREATE INDEX IF NOT EXISTS idx_checklist_items_transaction_id ON checklist_items(transaction_id)`,
	`CREATE INDEX IF NOT EXISTS idx_disclosure_items_transaction_id ON disclosure_items(transaction_id)`,
	`CREATE INDEX IF NOT EXISTS idx_task_items_transaction_id ON task_items(transaction_id)`,
	`CREATE INDEX IF NOT EXISTS idx_task_items_user_due ON task_items(user_id, due_date)`,
	`CREATE INDEX IF NOT EXISTS idx_calendar_events_user_start ON calendar_events(user_id, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_email_history_user_sent ON email_history(user_id, sent_at DESC)`,
}

// OwnedTables carry a user_id column and are only visible to their owner
var OwnedTables = []string{
	"clients",
	"transactions",
	"checklist_items",
	"disclosure_items",
	"task_items",
	"calendar_events",
	"email_history",
}

func itemTable(name string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		transaction_id UUID NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES auth.users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		section VARCHAR(100),
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		completed_at TIMESTAMPTZ,
		due_date DATE,
		notes TEXT,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, name)
}

// PolicyStatements enables row level security and (re)creates the access
// policies. The statements are idempotent.
func PolicyStatements() []string {
	var statements []string

	enable := func(table string) {
		statements = append(statements, fmt.Sprintf("ALTER TABLE %s ENABLE ROW LEVEL SECURITY", table))
	}
	policy := func(table, name, clause string) {
		statements = append(statements,
			fmt.Sprintf("DROP POLICY IF EXISTS %s ON %s", name, table),
			fmt.Sprintf("CREATE POLICY %s ON %s %s", name, table, clause),
		)
	}

	enable("profiles")
	policy("profiles", "profiles_owner", "USING (auth.uid() = id) WITH CHECK (auth.uid() = id)")

	for _, table := range OwnedTables {
		enable(table)
		policy(table, table+"_owner", "USING (auth.uid() = user_id) WITH CHECK (auth.uid() = user_id)")
	}

	for _, table := range []string{"disclosure_templates", "task_templates"} {
		enable(table)
		policy(table, table+"_read", "FOR SELECT TO authenticated USING (true)")
	}

	enable("email_templates")
	policy("email_templates", "email_templates_read", "FOR SELECT TO authenticated USING (user_id IS NULL OR auth.uid() = user_id)")
	policy("email_templates", "email_templates_owner_insert", "FOR INSERT TO authenticated WITH CHECK (auth.uid() = user_id)")
	policy("email_templates", "email_templates_owner_update", "FOR UPDATE TO authenticated USING (auth.uid() = user_id)")
	policy("email_templates", "email_templates_owner_delete", "FOR DELETE TO authenticated USING (auth.uid() = user_id)")

	return statements
}
