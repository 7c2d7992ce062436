// Package mocks provides test doubles for the google client.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"
	google "github.com/vilniuscoffee/coffee-finder/pkg/google"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// NearbySearch provides a mock function with given fields: ctx, req
func (_m *MockClient) NearbySearch(ctx context.Context, req google.NearbyRequest) (*google.NearbyResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for NearbySearch")
	}

	var r0 *google.NearbyResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, google.NearbyRequest) (*google.NearbyResponse, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, google.NearbyRequest) *google.NearbyResponse); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*google.NearbyResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, google.NearbyRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Details provides a mock function with given fields: ctx, placeID, fields
func (_m *MockClient) Details(ctx context.Context, placeID string, fields []string) (*google.PlaceDetails, error) {
	ret := _m.Called(ctx, placeID, fields)

	if len(ret) == 0 {
		panic("no return value specified for Details")
	}

	var r0 *google.PlaceDetails
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, []string) (*google.PlaceDetails, error)); ok {
		return rf(ctx, placeID, fields)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, []string) *google.PlaceDetails); ok {
		r0 = rf(ctx, placeID, fields)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*google.PlaceDetails)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, []string) error); ok {
		r1 = rf(ctx, placeID, fields)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Photo provides a mock function with given fields: ctx, reference, maxWidth
func (_m *MockClient) Photo(ctx context.Context, reference string, maxWidth int) (*google.PhotoData, error) {
	ret := _m.Called(ctx, reference, maxWidth)

	if len(ret) == 0 {
		panic("no return value specified for Photo")
	}

	var r0 *google.PhotoData
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, int) (*google.PhotoData, error)); ok {
		return rf(ctx, reference, maxWidth)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, int) *google.PhotoData); ok {
		r0 = rf(ctx, reference, maxWidth)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*google.PhotoData)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, int) error); ok {
		r1 = rf(ctx, reference, maxWidth)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
