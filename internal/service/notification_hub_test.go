package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"learnhub_backend/internal/events"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialHub serves hub for userID and returns a connected client socket.
func dialHub(t *testing.T, hub *NotificationHub, userID uint) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, userID)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Connections(userID) == 1 }, time.Second, 10*time.Millisecond)
	return conn
}

func readNotification(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	return got
}

func TestNotificationHubDeliversLocally(t *testing.T) {
	hub := NewNotificationHub(nil, []string{"*"})
	conn := dialHub(t, hub, 7)

	require.NoError(t, hub.Notify(context.Background(), 8, Notification{Type: events.AttemptGraded, Data: "not yours"}))
	require.NoError(t, hub.Notify(context.Background(), 7, Notification{Type: events.CertificateIssued, Data: map[string]int{"courseId": 3}}))

	got := readNotification(t, conn)
	assert.Equal(t, string(events.CertificateIssued), got["type"])
	assert.Equal(t, float64(3), got["data"].(map[string]interface{})["courseId"])

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Connections(7) == 0 }, time.Second, 10*time.Millisecond)
}

func TestNotificationHubFansOutThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	hub := NewNotificationHub(client, []string{"*"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(notificationChannel)[notificationChannel] == 1
	}, time.Second, 10*time.Millisecond)

	conn := dialHub(t, hub, 5)
	require.NoError(t, hub.Notify(ctx, 5, Notification{Type: events.ProgressReset, Data: map[string]int{"quizId": 9}}))

	got := readNotification(t, conn)
	assert.Equal(t, string(events.ProgressReset), got["type"])
}

func TestNotificationHubRejectsForeignOrigin(t *testing.T) {
	hub := NewNotificationHub(nil, []string{"https://learn.example.com"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, 1)
	}))
	defer srv.Close()

	header := http.Header{"Origin": {"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestNotifyingPublisherForwardsAndPushes(t *testing.T) {
	hub := NewNotificationHub(nil, []string{"*"})
	conn := dialHub(t, hub, 4)
	next := &recordingPublisher{}
	pub := NewNotifyingPublisher(next, hub)

	err := pub.Publish(context.Background(), events.AttemptGraded, events.AttemptGradedPayload{UserID: 4, QuizID: 2, Score: 50})
	require.NoError(t, err)
	assert.Equal(t, []events.EventType{events.AttemptGraded}, next.types())

	got := readNotification(t, conn)
	assert.Equal(t, string(events.AttemptGraded), got["type"])
	assert.Equal(t, float64(50), got["data"].(map[string]interface{})["score"])
}

// The whole submission flow pushes the graded attempt to the learner.
func TestSubmitNotifiesLearner(t *testing.T) {
	f := newFixture()
	hub := NewNotificationHub(nil, []string{"*"})
	svc := f.quizService(2)
	svc.Events = NewNotifyingPublisher(f.publisher, hub)

	course, _, _ := f.courseWithLessons(t, 1)
	quiz := f.quiz(t, ownedByCourse(course.ID), 2, 70, true)
	conn := dialHub(t, hub, 11)

	res, err := svc.Submit(context.Background(), 11, quiz.ID, answers(quiz, 2))
	require.NoError(t, err)
	require.True(t, res.Passed)

	got := readNotification(t, conn)
	assert.Equal(t, string(events.AttemptGraded), got["type"])
}
