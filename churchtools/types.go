// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package churchtools

import (
	"encoding/json"
	"time"
)

// Event is a scheduled occurrence requiring staffing.
type Event struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	// Services is populated only by Client.Event, which requests the
	// eventServices sub-resource.
	Services []EventService `json:"eventServices,omitempty"`
}

// EventService assigns (or reserves) one service slot of an event.
type EventService struct {
	ID        int `json:"id"`
	ServiceID int `json:"serviceId"`
	// PersonID is nil for an unfilled slot.
	PersonID *int `json:"personId"`
	// Agreed is true once the person confirmed the assignment.
	Agreed bool `json:"agreed"`
	// Name is the free-text name for slots filled without a person record.
	Name string `json:"name,omitempty"`
}

// Service is a service type (e.g. "Sound") in the service catalog.
type Service struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	ServiceGroupID int    `json:"serviceGroupId"`
}

// ServiceGroup groups service types for display (e.g. "Technik").
type ServiceGroup struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	SortKey int    `json:"sortKey"`
}

// Person is a ChurchTools person record.
type Person struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// envelope is the {"data": ..., "meta": ...} wrapper of every response.
type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta struct {
		Pagination *pagination `json:"pagination"`
	} `json:"meta"`
}

type pagination struct {
	Total    int `json:"total"`
	Limit    int `json:"limit"`
	Current  int `json:"current"`
	LastPage int `json:"lastPage"`
}
