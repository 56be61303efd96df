package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisNotifier_PublishesJSON(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, "marketpulse:notifications")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	n := NewError("Error in market-search", "Rate limit exceeded. Please try again in a moment.")
	require.NoError(t, NewRedisNotifier(client, "marketpulse:notifications").Notify(ctx, n))

	msg := <-sub.Channel()
	var got Notification
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, n.ID, got.ID)
	assert.Equal(t, VariantDestructive, got.Variant)
	assert.Equal(t, "Error in market-search", got.Title)
}

func TestRedisNotifier_PublishError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.Regexp().ExpectPublish("marketpulse:notifications", `.*`).SetErr(errors.New("connection refused"))

	err := NewRedisNotifier(client, "marketpulse:notifications").Notify(context.Background(), NewError("Error", "x"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRecorder_All(t *testing.T) {
	var r Recorder
	require.NoError(t, r.Notify(context.Background(), NewError("Error", "a")))
	require.NoError(t, r.Notify(context.Background(), NewError("Error", "b")))

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Description)
	assert.NotEqual(t, all[0].ID, all[1].ID)
}
