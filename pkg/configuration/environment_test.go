package configuration

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestImportOptionsValidate(t *testing.T) {
	valid := ImportOptions{
		PreviewRows:     10,
		ErrorSummaryTop: 5,
		FuzzyThreshold:  0.85,
		CommitWorkers:   4,
	}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*ImportOptions)
	}{
		{"zero preview rows", func(o *ImportOptions) { o.PreviewRows = 0 }},
		{"zero summary top", func(o *ImportOptions) { o.ErrorSummaryTop = 0 }},
		{"zero threshold", func(o *ImportOptions) { o.FuzzyThreshold = 0 }},
		{"threshold above one", func(o *ImportOptions) { o.FuzzyThreshold = 1.5 }},
		{"zero workers", func(o *ImportOptions) { o.CommitWorkers = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := valid
			tc.mutate(&opts)
			require.Error(t, opts.Validate())
		})
	}
}

func TestLogrusLogLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"silent":  logrus.PanicLevel,
		"error":   logrus.ErrorLevel,
		"warn":    logrus.WarnLevel,
		"info":    logrus.InfoLevel,
		"debug":   logrus.DebugLevel,
		"unknown": logrus.ErrorLevel,
	}
	for level, expected := range cases {
		c := &Configuration{LogLevel: level}
		require.Equal(t, expected, c.LogrusLogLevel(), level)
	}
}

func TestDatabaseConnectionString(t *testing.T) {
	d := DatabaseOptions{
		Name:     "assetdeck",
		Host:     "db.internal",
		Port:     "5433",
		User:     "app",
		Password: "secret",
	}
	require.Equal(
		t,
		"host=db.internal port=5433 user=app dbname=assetdeck password=secret sslmode=disable",
		d.ConnectionString(),
	)
}
