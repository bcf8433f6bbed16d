package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/token-enricher/pkg/twitter"
)

func frozen(s string) func() time.Time {
	ts, err := time.Parse(CreationDateLayout, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return ts }
}

func TestAccountAgeDays(t *testing.T) {
	tests := []struct {
		name    string
		created string
		now     string
		want    int
	}{
		{"four years with a leap day", "2020-01-01 00:00:00", "2024-01-01 00:00:00", 1461},
		{"same instant", "2023-05-05 12:00:00", "2023-05-05 12:00:00", 0},
		{"partial day floors", "2023-05-05 12:00:00", "2023-05-06 11:59:59", 0},
		{"exactly one day", "2023-05-05 12:00:00", "2023-05-06 12:00:00", 1},
		{"half a day in the future", "2023-05-06 00:00:00", "2023-05-05 12:00:00", -1},
		{"a day and a half in the future", "2023-05-07 00:00:00", "2023-05-05 12:00:00", -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AccountAgeDays(tt.created, frozen(tt.now)())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAccountAgeDays_Unparsable(t *testing.T) {
	_, err := AccountAgeDays("Wed Oct 10 20:19:24 +0000 2018", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enrich: parse creation date")
}

func TestAnalyze(t *testing.T) {
	logs := observeLogs(t)
	tw := &mockTwitter{}
	tw.On("Lookup", mock.Anything, "mooncoin").Return(&twitter.Account{
		CreatedAt:      "2020-01-01 00:00:00",
		FollowersCount: decimal.NewFromInt(12450),
		FollowingCount: decimal.NewFromInt(12),
		StatusesCount:  decimal.RequireFromString("391.0"),
		Location:       "Solana",
		Verified:       true,
	}, nil)

	a := NewAnalyzer(tw, frozen("2024-01-01 00:00:00"))
	p := a.Analyze(context.Background(), "https://x.com/mooncoin/")

	require.NotNil(t, p)
	assert.Equal(t, "mooncoin", p.Handle)
	assert.Equal(t, "2020-01-01 00:00:00", p.CreationDate)
	assert.Equal(t, int64(12450), p.FollowersCount)
	assert.Equal(t, int64(12), p.FollowingCount)
	assert.Equal(t, int64(391), p.TweetCount)
	assert.Equal(t, "Solana", p.Location)
	assert.True(t, p.Verified)
	require.NotNil(t, p.AccountAgeDays)
	assert.Equal(t, 1461, *p.AccountAgeDays)

	info := logs.FilterMessage("enrich: twitter account analyzed").All()
	require.Len(t, info, 1)
	assert.Equal(t, zapcore.InfoLevel, info[0].Level)
	tw.AssertExpectations(t)
}

func TestAnalyze_UnparsableDateKeepsProfile(t *testing.T) {
	logs := observeLogs(t)
	tw := &mockTwitter{}
	tw.On("Lookup", mock.Anything, "x").Return(&twitter.Account{
		CreatedAt:      "last tuesday",
		FollowersCount: decimal.NewFromInt(5),
	}, nil)

	p := NewAnalyzer(tw, nil).Analyze(context.Background(), "https://x.com/x")

	require.NotNil(t, p)
	assert.Nil(t, p.AccountAgeDays)
	assert.Equal(t, int64(5), p.FollowersCount)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).FilterMessage("enrich: unparsable account creation date").Len())
	assert.Equal(t, 0, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestAnalyze_MissingDateNoWarning(t *testing.T) {
	logs := observeLogs(t)
	tw := &mockTwitter{}
	tw.On("Lookup", mock.Anything, "x").Return(&twitter.Account{}, nil)

	p := NewAnalyzer(tw, nil).Analyze(context.Background(), "https://x.com/x")

	require.NotNil(t, p)
	assert.Nil(t, p.AccountAgeDays)
	assert.Equal(t, 0, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestAnalyze_Failures(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		level zapcore.Level
	}{
		{"rate limited", twitter.ErrRateLimited, zapcore.WarnLevel},
		{"status error", &twitter.StatusError{StatusCode: 404, Body: "User not found"}, zapcore.ErrorLevel},
		{"transport", errors.New("i/o timeout"), zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := observeLogs(t)
			tw := &mockTwitter{}
			tw.On("Lookup", mock.Anything, "ghost").Return(nil, tt.err)

			p := NewAnalyzer(tw, nil).Analyze(context.Background(), "https://twitter.com/ghost")

			assert.Nil(t, p)
			require.Equal(t, 1, logs.Len())
			assert.Equal(t, tt.level, logs.All()[0].Level)
		})
	}
}

func TestAnalyze_PassesMalformedHandleThrough(t *testing.T) {
	observeLogs(t)
	tw := &mockTwitter{}
	tw.On("Lookup", mock.Anything, "i").Return(nil, &twitter.StatusError{StatusCode: 400})

	assert.Nil(t, NewAnalyzer(tw, nil).Analyze(context.Background(), "https://x.com/i"))
	tw.AssertExpectations(t)
}
