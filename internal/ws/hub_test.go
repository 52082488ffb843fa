package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, restaurantID uuid.UUID) *Client {
	return &Client{
		hub:          hub,
		restaurantID: restaurantID,
		send:         make(chan []byte, 256),
	}
}

func TestHubRegistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	restaurantID := uuid.New()
	client := mockClient(hub, restaurantID)

	// Register client
	hub.register <- client

	// Give hub time to process
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if hub.rooms[restaurantID] == nil {
		t.Fatal("restaurant room not created")
	}
	if !hub.rooms[restaurantID][client] {
		t.Fatal("client not registered in restaurant room")
	}
}

func TestHubUnregistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	restaurantID := uuid.New()
	client := mockClient(hub, restaurantID)

	// Register client
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	// Unregister client
	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	// Room should be cleaned up when empty
	if hub.rooms[restaurantID] != nil {
		t.Fatal("restaurant room not cleaned up after last client unregistered")
	}
}

func TestBroadcastToSingleRestaurant(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	restaurant1 := uuid.New()
	restaurant2 := uuid.New()

	client1 := mockClient(hub, restaurant1)
	client2 := mockClient(hub, restaurant2)

	// Register both clients
	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	// Broadcast to restaurant1 only
	testPayload := json.RawMessage(`{"order_number":"PED-0042"}`)
	event := Event{
		Type:    EventOrderCreated,
		Payload: testPayload,
	}
	hub.BroadcastToRestaurant(restaurant1, event)

	// Check client1 receives the message
	select {
	case msg := <-client1.send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal message: %v", err)
		}
		if received.Type != EventOrderCreated {
			t.Errorf("expected type 'order.created', got '%s'", received.Type)
		}
		if string(received.Payload) != string(testPayload) {
			t.Errorf("expected payload '%s', got '%s'", testPayload, received.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("client1 did not receive message")
	}

	// Check client2 does NOT receive the message
	select {
	case <-client2.send:
		t.Fatal("client2 should not have received message for different restaurant")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message received
	}
}

func TestBroadcastToMultipleClientsInSameRestaurant(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	restaurantID := uuid.New()
	client1 := mockClient(hub, restaurantID)
	client2 := mockClient(hub, restaurantID)
	client3 := mockClient(hub, restaurantID)

	// Register all clients to same restaurant
	hub.register <- client1
	hub.register <- client2
	hub.register <- client3
	time.Sleep(10 * time.Millisecond)

	// Broadcast event
	testPayload := json.RawMessage(`{"order_number":"PED-0007"}`)
	event := Event{
		Type:    EventOrderCreated,
		Payload: testPayload,
	}
	hub.BroadcastToRestaurant(restaurantID, event)

	// All three clients should receive the message
	clients := []*Client{client1, client2, client3}
	for i, client := range clients {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("client%d: failed to unmarshal: %v", i+1, err)
			}
			if received.Type != EventOrderCreated {
				t.Errorf("client%d: expected type 'order.created', got '%s'", i+1, received.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}
}

func TestHubMultipleRestaurantsIsolation(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	restaurant1 := uuid.New()
	restaurant2 := uuid.New()
	restaurant3 := uuid.New()

	// Create 2 clients per restaurant
	clients := map[uuid.UUID][]*Client{
		restaurant1: {mockClient(hub, restaurant1), mockClient(hub, restaurant1)},
		restaurant2: {mockClient(hub, restaurant2), mockClient(hub, restaurant2)},
		restaurant3: {mockClient(hub, restaurant3), mockClient(hub, restaurant3)},
	}

	// Register all clients
	for _, clientList := range clients {
		for _, client := range clientList {
			hub.register <- client
		}
	}
	time.Sleep(10 * time.Millisecond)

	// Broadcast to restaurant2 only
	event := Event{
		Type:    EventOrderCreated,
		Payload: json.RawMessage(`{"restaurant_id":"` + restaurant2.String() + `"}`),
	}
	hub.BroadcastToRestaurant(restaurant2, event)

	// Only restaurant2 clients should receive
	for restaurantID, clientList := range clients {
		for i, client := range clientList {
			select {
			case msg := <-client.send:
				if restaurantID != restaurant2 {
					t.Fatalf("restaurant %s client %d should not receive message", restaurantID, i)
				}
				var received Event
				if err := json.Unmarshal(msg, &received); err != nil {
					t.Fatalf("unmarshal error: %v", err)
				}
				if received.Type != EventOrderCreated {
					t.Errorf("wrong event type: %s", received.Type)
				}
			case <-time.After(50 * time.Millisecond):
				if restaurantID == restaurant2 {
					t.Fatalf("restaurant2 client %d should have received message", i)
				}
				// Expected for other restaurants
			}
		}
	}
}

func TestHubCleanupEmptyRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	restaurantID := uuid.New()
	client1 := mockClient(hub, restaurantID)
	client2 := mockClient(hub, restaurantID)

	// Register both clients
	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if len(hub.rooms[restaurantID]) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(hub.rooms[restaurantID]))
	}
	hub.mu.RUnlock()

	// Unregister first client
	hub.unregister <- client1
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if len(hub.rooms[restaurantID]) != 1 {
		t.Fatalf("expected 1 client after first unregister, got %d", len(hub.rooms[restaurantID]))
	}
	hub.mu.RUnlock()

	// Unregister second client
	hub.unregister <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if hub.rooms[restaurantID] != nil {
		t.Fatal("room should be deleted when last client unregisters")
	}
	hub.mu.RUnlock()
}

func TestBroadcastToNonExistentRestaurant(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Create a client for restaurant1
	restaurant1 := uuid.New()
	client1 := mockClient(hub, restaurant1)
	hub.register <- client1
	time.Sleep(10 * time.Millisecond)

	// Broadcast to restaurant2 (doesn't exist)
	restaurant2 := uuid.New()
	event := Event{
		Type:    EventOrderCreated,
		Payload: json.RawMessage(`{"test":"data"}`),
	}
	hub.BroadcastToRestaurant(restaurant2, event)

	// client1 should NOT receive anything
	select {
	case <-client1.send:
		t.Fatal("client should not receive message for different restaurant")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message
	}
}
