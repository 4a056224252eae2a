package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskfan/internal/worker"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestJobQueueEnqueue(t *testing.T) {
	_, client := setupRedis(t)
	queue := worker.NewJobQueue(client)

	err := queue.Enqueue(worker.QueueNotifications, worker.JobTypeNotificationDelivery, map[string]interface{}{
		"notification_id": "abc",
	})
	require.NoError(t, err)

	size, err := queue.GetQueueSize(worker.QueueNotifications)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)

	raw, err := client.LPop(context.Background(), worker.QueueNotifications).Result()
	require.NoError(t, err)

	var job worker.Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Equal(t, worker.JobTypeNotificationDelivery, job.Type)
	assert.Equal(t, "abc", job.Payload["notification_id"])
	assert.Equal(t, 3, job.MaxTries)
}

func TestWorkerDeliversJob(t *testing.T) {
	_, client := setupRedis(t)

	delivered := make(chan *worker.Job, 1)
	w := worker.NewWorker(worker.WorkerConfig{
		RedisClient: client,
		Queues:      []string{worker.QueueNotifications},
	})
	w.RegisterHandler(worker.JobTypeNotificationDelivery, func(ctx context.Context, job *worker.Job) error {
		delivered <- job
		return nil
	})
	w.Start(1)
	defer w.Stop()

	queue := worker.NewJobQueue(client)
	require.NoError(t, queue.Enqueue(worker.QueueNotifications, worker.JobTypeNotificationDelivery, map[string]interface{}{
		"notification_id": "n1",
	}))

	select {
	case job := <-delivered:
		assert.Equal(t, "n1", job.Payload["notification_id"])
	case <-time.After(10 * time.Second):
		t.Fatal("job was not delivered")
	}
}

func TestFailedJobMovesToRetryQueue(t *testing.T) {
	_, client := setupRedis(t)

	attempted := make(chan struct{}, 1)
	w := worker.NewWorker(worker.WorkerConfig{
		RedisClient: client,
		Queues:      []string{worker.QueueNotifications},
	})
	w.RegisterHandler(worker.JobTypeNotificationDelivery, func(ctx context.Context, job *worker.Job) error {
		select {
		case attempted <- struct{}{}:
		default:
		}
		return errors.New("delivery endpoint unavailable")
	})
	w.Start(1)
	defer w.Stop()

	queue := worker.NewJobQueue(client)
	require.NoError(t, queue.Enqueue(worker.QueueNotifications, worker.JobTypeNotificationDelivery, nil))

	select {
	case <-attempted:
	case <-time.After(10 * time.Second):
		t.Fatal("job was never attempted")
	}

	// The failed job lands in the retry queue with a future process-at, so
	// it stays there for the duration of this test.
	deadline := time.Now().Add(5 * time.Second)
	for {
		size, err := client.LLen(context.Background(), "retry_queue").Result()
		require.NoError(t, err)
		if size == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("job never reached the retry queue")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestExhaustedJobMovesToDeadQueue(t *testing.T) {
	_, client := setupRedis(t)

	w := worker.NewWorker(worker.WorkerConfig{
		RedisClient: client,
		Queues:      []string{worker.QueueNotifications},
	})
	w.RegisterHandler(worker.JobTypeNotificationDelivery, func(ctx context.Context, job *worker.Job) error {
		return errors.New("delivery endpoint unavailable")
	})

	// A job on its last permitted attempt goes straight to the dead queue.
	job := worker.Job{
		ID:        "last-try",
		Type:      worker.JobTypeNotificationDelivery,
		Attempts:  0,
		MaxTries:  1,
		CreatedAt: time.Now(),
		ProcessAt: time.Now(),
	}
	data, err := json.Marshal(job)
	require.NoError(t, err)
	require.NoError(t, client.RPush(context.Background(), worker.QueueNotifications, data).Err())

	w.Start(1)
	defer w.Stop()

	deadline := time.Now().Add(10 * time.Second)
	for {
		size, err := client.LLen(context.Background(), "dead_queue").Result()
		require.NoError(t, err)
		if size == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("job never reached the dead queue")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
