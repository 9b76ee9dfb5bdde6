package accesscontrol

import (
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestParseCustomCondition(t *testing.T) {
	ctx := Context{OrganizationID: "org1", UserID: "u1"}

	tests := []struct {
		name   string
		params string
		want   Filter
	}{
		{
			name:   "eq with literal",
			params: `{"field":"status","operator":"eq","value":"OPEN"}`,
			want:   Equals{Column: "status", Value: "OPEN"},
		},
		{
			name:   "eq with user placeholder",
			params: `{"field":"createdById","operator":"eq","value":"$userId"}`,
			want:   Equals{Column: "created_by_id", Value: "u1"},
		},
		{
			name:   "eq with organization placeholder",
			params: `{"field":"organizationId","operator":"eq","value":"$organizationId"}`,
			want:   Equals{Column: "organization_id", Value: "org1"},
		},
		{
			name:   "neq",
			params: `{"field":"status","operator":"neq","value":"ARCHIVED"}`,
			want:   NotEquals{Column: "status", Value: "ARCHIVED"},
		},
		{
			name:   "in with list",
			params: `{"field":"status","operator":"in","value":["WON","LOST"]}`,
			want:   In{Column: "status", Values: []any{"WON", "LOST"}},
		},
		{
			name:   "in with scalar is wrapped",
			params: `{"field":"status","operator":"in","value":"WON"}`,
			want:   In{Column: "status", Values: []any{"WON"}},
		},
		{
			name:   "contains",
			params: `{"field":"name","operator":"contains","value":"tour"}`,
			want:   Contains{Column: "name", Value: "tour"},
		},
		{
			name:   "unknown operator falls back to equality",
			params: `{"field":"status","operator":"matches","value":"OPEN"}`,
			want:   Equals{Column: "status", Value: "OPEN"},
		},
		{
			name:   "empty params impose no restriction",
			params: ``,
			want:   All{},
		},
		{
			name:   "invalid json imposes no restriction",
			params: `{"field":`,
			want:   All{},
		},
		{
			name:   "missing field imposes no restriction",
			params: `{"operator":"eq","value":"x"}`,
			want:   All{},
		},
		{
			name:   "missing value imposes no restriction",
			params: `{"field":"status","operator":"eq"}`,
			want:   All{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCustomCondition(datatypes.JSON(tt.params), ctx)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestValidateCustomParams(t *testing.T) {
	tests := []struct {
		name    string
		params  string
		wantErr bool
	}{
		{"valid eq", `{"field":"status","operator":"eq","value":"OPEN"}`, false},
		{"valid in", `{"field":"status","operator":"in","value":["WON"]}`, false},
		{"valid contains", `{"field":"name","operator":"contains","value":"x"}`, false},
		{"empty", ``, true},
		{"invalid json", `{"field":`, true},
		{"missing operator", `{"field":"status","value":"OPEN"}`, true},
		{"missing value", `{"field":"status","operator":"eq"}`, true},
		{"unknown operator", `{"field":"status","operator":"matches","value":"x"}`, true},
		{"in with scalar value", `{"field":"status","operator":"in","value":"WON"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCustomParams([]byte(tt.params))
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return gdb
}

func TestFilterApplySQL(t *testing.T) {
	gdb := dryRunDB(t)

	query := func(f Filter) *gorm.Statement {
		var rows []map[string]any
		tx := f.Apply(gdb.Table("briefs").Where("organization_id = ?", "org1")).Find(&rows)
		require.NoError(t, tx.Error)
		return tx.Statement
	}

	t.Run("all adds nothing", func(t *testing.T) {
		stmt := query(All{})
		require.NotContains(t, stmt.SQL.String(), "created_by_id")
		require.Equal(t, []any{"org1"}, stmt.Vars)
	})

	t.Run("equals", func(t *testing.T) {
		stmt := query(Equals{Column: "created_by_id", Value: "u1"})
		require.Contains(t, stmt.SQL.String(), "`created_by_id` = ?")
		require.Equal(t, []any{"org1", "u1"}, stmt.Vars)
	})

	t.Run("in", func(t *testing.T) {
		stmt := query(In{Column: "client_id", Values: []any{"c1", "c2"}})
		require.Contains(t, stmt.SQL.String(), "`client_id` IN (?,?)")
		require.Equal(t, []any{"org1", "c1", "c2"}, stmt.Vars)
	})

	t.Run("contains renders as like", func(t *testing.T) {
		stmt := query(Contains{Column: "name", Value: "tour"})
		require.Contains(t, stmt.SQL.String(), "`name` LIKE ?")
		require.Contains(t, stmt.Vars, "%tour%")
	})

	t.Run("any-of renders as or group", func(t *testing.T) {
		stmt := query(AnyOf{Filters: []Filter{
			In{Column: "created_by_id", Values: []any{"u1", "u2"}},
			In{Column: "assignee_id", Values: []any{"u1", "u2"}},
		}})
		sql := stmt.SQL.String()
		require.Contains(t, sql, "`created_by_id` IN (?,?)")
		require.Contains(t, sql, "`assignee_id` IN (?,?)")
		require.True(t, strings.Contains(sql, " OR "), "expected an OR group, got %q", sql)
	})

	t.Run("sentinel matches nothing", func(t *testing.T) {
		stmt := query(MatchNone())
		require.Contains(t, stmt.SQL.String(), "`id` = ?")
		require.Contains(t, stmt.Vars, DeniedSentinel)
	})
}

func TestStringsIn(t *testing.T) {
	got := StringsIn("client_id", []string{"c1", "c2"})
	require.Equal(t, In{Column: "client_id", Values: []any{"c1", "c2"}}, got)
}
