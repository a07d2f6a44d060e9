package store

import "testing"

func TestPushSubscribe(t *testing.T) {
	st := setupTestStores(t)

	sub, err := st.Push.Subscribe("https://push.example/ep1", "p256dh-a", "auth-a")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if sub == nil || sub.Endpoint != "https://push.example/ep1" {
		t.Fatalf("sub = %+v", sub)
	}

	// Re-subscribe refreshes keys on the same row
	again, err := st.Push.Subscribe("https://push.example/ep1", "p256dh-b", "auth-b")
	if err != nil {
		t.Fatalf("re-subscribe: %v", err)
	}
	if again.ID != sub.ID {
		t.Errorf("re-subscribe created a new row: %d != %d", again.ID, sub.ID)
	}
	if again.P256dhKey != "p256dh-b" {
		t.Errorf("p256dh = %q, want refreshed key", again.P256dhKey)
	}

	subs, _ := st.Push.List()
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(subs))
	}

	if err := st.Push.DeleteByEndpoint("https://push.example/ep1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	subs, _ = st.Push.List()
	if len(subs) != 0 {
		t.Errorf("expected 0 subscriptions, got %d", len(subs))
	}
}
