package store

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	commonredis "kolangkoding.com/tradeledger/internal/common/redis"
	"kolangkoding.com/tradeledger/internal/config"
	"kolangkoding.com/tradeledger/internal/trade"
)

func TestRedis_Append(t *testing.T) {
	tr := trade.New(trader, "AAPL", big.NewInt(100), big.NewInt(150), 1700000000)
	id := tr.ID()

	tests := []struct {
		name      string
		setupMock func(mock *MockredisClient, ctx context.Context)
		wantErr   bool
	}{
		{
			name: "success",
			setupMock: func(mock *MockredisClient, ctx context.Context) {
				mock.EXPECT().
					TxAppend(ctx, gomock.Any(), redisLogKey, gomock.Any()).
					DoAndReturn(func(_ context.Context, cache commonredis.Cache, _ string, entry any) error {
						require.Equal(t, "ledger:trade:"+id.Hex(), cache.Key)
						gotID, gotTrade, err := decodeEntry(entry.([]byte))
						require.NoError(t, err)
						require.Equal(t, id, gotID)
						require.Equal(t, "AAPL", gotTrade.Symbol)
						return nil
					})
			},
		},
		{
			name: "transaction failure",
			setupMock: func(mock *MockredisClient, ctx context.Context) {
				mock.EXPECT().
					TxAppend(ctx, gomock.Any(), redisLogKey, gomock.Any()).
					Return(errors.New("EXECABORT"))
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockClient := NewMockredisClient(ctrl)
			ctx := context.Background()
			tc.setupMock(mockClient, ctx)

			err := newRedis(mockClient, nil).Append(ctx, id, tr)
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			var storeErr *Error
			require.ErrorAs(t, err, &storeErr)
			require.Equal(t, "append", storeErr.Op)
		})
	}
}

func TestRedis_Replay(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := NewMockredisClient(ctrl)
	ctx := context.Background()

	a := trade.New(trader, "AAPL", big.NewInt(1), big.NewInt(1), 1)
	b := trade.New(trader, "MSFT", big.NewInt(2), big.NewInt(2), 2)
	rawA, err := encodeEntry(a.ID(), a)
	require.NoError(t, err)
	rawB, err := encodeEntry(b.ID(), b)
	require.NoError(t, err)

	mockClient.EXPECT().
		LRange(ctx, redisLogKey, int64(0), int64(-1)).
		Return([]string{string(rawA), string(rawB)}, nil)

	ids, trades := replayAll(t, newRedis(mockClient, nil))
	require.Equal(t, []trade.ID{a.ID(), b.ID()}, ids)
	require.Equal(t, "MSFT", trades[1].Symbol)
}

func TestRedis_ReplayCorruptEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := NewMockredisClient(ctrl)
	ctx := context.Background()

	mockClient.EXPECT().
		LRange(ctx, redisLogKey, int64(0), int64(-1)).
		Return([]string{"{not json"}, nil)

	err := newRedis(mockClient, nil).Replay(ctx, func(trade.ID, trade.Trade) error { return nil })
	require.ErrorIs(t, err, ErrCorruptEntry)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, config.StoreConfig{Backend: config.BackendMemory}, nil)
	require.NoError(t, err)
	require.IsType(t, Memory{}, b)

	b, err = Open(ctx, config.StoreConfig{
		Backend: config.BackendBadger,
		Badger:  config.BadgerConfig{InMemory: true},
	}, nil)
	require.NoError(t, err)
	require.IsType(t, &Badger{}, b)
	require.NoError(t, b.Close())

	_, err = Open(ctx, config.StoreConfig{Backend: "etcd"}, nil)
	require.ErrorIs(t, err, ErrUnknownBackend)
}
