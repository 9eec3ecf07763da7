package repository

import (
	"context"
	"fmt"
)

// CreateSchema creates all tables the engine needs.
// Safe to call multiple times - uses IF NOT EXISTS.
func (r *Repository) CreateSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
    user_id BIGINT PRIMARY KEY,
    display_name TEXT NOT NULL,
    path TEXT NOT NULL,
    workout_plan_id UUID,
    total_xp INTEGER NOT NULL DEFAULT 0,
    current_streak INTEGER NOT NULL DEFAULT 0,
    longest_streak INTEGER NOT NULL DEFAULT 0,
    is_admin BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS quest_definitions (
    quest_id UUID PRIMARY KEY,
    path TEXT NOT NULL,
    category TEXT NOT NULL,
    difficulty TEXT NOT NULL,
    title TEXT NOT NULL,
    xp_reward INTEGER NOT NULL CHECK (xp_reward > 0),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_quest_definitions_path ON quest_definitions(path) WHERE is_active;

CREATE TABLE IF NOT EXISTS quest_assignments (
    assignment_id UUID PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES profiles(user_id),
    quest_id UUID NOT NULL REFERENCES quest_definitions(quest_id),
    status TEXT NOT NULL CHECK (status IN ('active', 'completed', 'abandoned')),
    selected_at TIMESTAMPTZ NOT NULL,
    completed_at TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS ux_quest_assignments_active
    ON quest_assignments(user_id, quest_id) WHERE status = 'active';
CREATE INDEX IF NOT EXISTS idx_quest_assignments_user ON quest_assignments(user_id, status);

CREATE TABLE IF NOT EXISTS quest_completions (
    completion_id UUID PRIMARY KEY,
    assignment_id UUID NOT NULL UNIQUE REFERENCES quest_assignments(assignment_id),
    user_id BIGINT NOT NULL REFERENCES profiles(user_id),
    note TEXT NOT NULL DEFAULT '',
    completed_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS workout_plans (
    plan_id UUID PRIMARY KEY,
    path TEXT NOT NULL,
    title TEXT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS workout_logs (
    log_id UUID PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES profiles(user_id),
    log_date DATE NOT NULL,
    completed BOOLEAN NOT NULL,
    payload JSONB NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, log_date)
);

CREATE TABLE IF NOT EXISTS xp_events (
    event_id UUID PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES profiles(user_id),
    source_type TEXT NOT NULL CHECK (source_type IN ('quest_completion', 'workout_log')),
    source_id UUID NOT NULL,
    amount INTEGER NOT NULL CHECK (amount > 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, source_type, source_id)
);

CREATE INDEX IF NOT EXISTS idx_xp_events_user_created ON xp_events(user_id, created_at);

CREATE TABLE IF NOT EXISTS groups (
    group_id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    owner_id BIGINT NOT NULL REFERENCES profiles(user_id),
    invite_code TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS group_memberships (
    group_id UUID NOT NULL REFERENCES groups(group_id),
    user_id BIGINT NOT NULL REFERENCES profiles(user_id),
    role TEXT NOT NULL CHECK (role IN ('owner', 'member')),
    joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (group_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_group_memberships_user ON group_memberships(user_id);

CREATE TABLE IF NOT EXISTS challenges (
    challenge_id UUID PRIMARY KEY,
    group_id UUID NOT NULL REFERENCES groups(group_id),
    title TEXT NOT NULL,
    starts_on DATE NOT NULL,
    ends_on DATE NOT NULL CHECK (ends_on >= starts_on),
    created_by BIGINT NOT NULL REFERENCES profiles(user_id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
