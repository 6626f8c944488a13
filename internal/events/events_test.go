package events

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventWireForm(t *testing.T) {
	ev := Event{
		Kind:      KindFeesCollected,
		TxID:      "3yZe7d",
		Owner:     solana.NewWallet().PublicKey(),
		LPMint:    solana.NewWallet().PublicKey(),
		Index:     2,
		Amount:    91,
		Fee0:      100,
		Fee1:      100,
		Timestamp: 1_700_000_000,
	}

	data, err := ev.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), ev.Owner.String())

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, ev, got)
	assert.Equal(t, "3yZe7d:fees_collected", got.MsgID())
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	_, ok := r.Last()
	assert.False(t, ok)

	ctx := context.Background()
	require.NoError(t, r.Publish(ctx, Event{Kind: KindLocked, Amount: 1}))
	require.NoError(t, r.Publish(ctx, Event{Kind: KindUnlocked, Amount: 2}))

	all := r.Events()
	require.Len(t, all, 2)
	assert.Equal(t, KindLocked, all[0].Kind)

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, uint64(2), last.Amount)
}

func TestNATSConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     NATSConfig
		wantErr bool
	}{
		{"valid", NATSConfig{URL: "nats://127.0.0.1:4222", Stream: "LOCKS", SubjectRoot: "lplock"}, false},
		{"missing url", NATSConfig{Stream: "LOCKS", SubjectRoot: "lplock"}, true},
		{"missing stream", NATSConfig{URL: "nats://x", SubjectRoot: "lplock"}, true},
		{"missing subject", NATSConfig{URL: "nats://x", Stream: "LOCKS"}, true},
		{"negative timeout", NATSConfig{URL: "nats://x", Stream: "LOCKS", SubjectRoot: "lplock", PublishTimeout: -1}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
