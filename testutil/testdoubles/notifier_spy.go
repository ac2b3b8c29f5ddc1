package testdoubles

import (
	"sync"
)

// Notification is one captured Notify call.
type Notification struct {
	UserID  string
	Message string
}

// NotifierSpy captures all notifications in call order.
type NotifierSpy struct {
	mu            sync.Mutex
	notifications []Notification
}

func NewNotifierSpy() *NotifierSpy {
	return &NotifierSpy{}
}

func (s *NotifierSpy) Notify(userID, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, Notification{UserID: userID, Message: message})
}

func (s *NotifierSpy) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Notification(nil), s.notifications...)
}

func (s *NotifierSpy) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.notifications)
}
