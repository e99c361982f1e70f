package getCarsByOwner

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"carvex/internal/http-server/handlers/car/getCarsByOwner/mocks"
	"carvex/internal/lib/logger/handlers/slogdiscard"
	"carvex/internal/models"
	"carvex/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetCarsByOwnerHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	ownerCars := []models.Car{
		{ID: "65a1b2c3d4e5f60718293a4b", Fields: map[string]any{"email": "owner@example.com", "carModel": "Civic"}},
	}

	testCases := []struct {
		name           string
		path           string
		mockSetup      func(m *mocks.OwnerCarsGetter)
		expectedStatus int
		expectedBody   string
		checkBody      func(t *testing.T, body string)
	}{
		{
			name: "Success",
			path: "/cars/user/owner@example.com",
			mockSetup: func(m *mocks.OwnerCarsGetter) {
				m.On("GetCarsByOwner", mock.Anything, "owner@example.com", storage.DefaultPage()).Return(ownerCars, nil)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body string) {
				var cars []models.Car
				require.NoError(t, json.Unmarshal([]byte(body), &cars))
				require.Len(t, cars, 1)
				assert.Equal(t, "owner@example.com", cars[0].Email())
			},
		},
		{
			name: "Escaped email",
			path: "/cars/user/owner%2Btag@example.com",
			mockSetup: func(m *mocks.OwnerCarsGetter) {
				m.On("GetCarsByOwner", mock.Anything, "owner+tag@example.com", storage.DefaultPage()).Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name: "Literal percent is decoded once",
			path: "/cars/user/a%2541b@x.com",
			mockSetup: func(m *mocks.OwnerCarsGetter) {
				m.On("GetCarsByOwner", mock.Anything, "a%41b@x.com", storage.DefaultPage()).Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name: "Paged",
			path: "/cars/user/owner@example.com?limit=5&offset=10",
			mockSetup: func(m *mocks.OwnerCarsGetter) {
				m.On("GetCarsByOwner", mock.Anything, "owner@example.com", storage.Page{Limit: 5, Offset: 10}).Return([]models.Car{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name:           "Invalid pagination",
			path:           "/cars/user/owner@example.com?offset=-3",
			mockSetup:      func(m *mocks.OwnerCarsGetter) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid pagination parameters"}`,
		},
		{
			name: "Internal server error",
			path: "/cars/user/owner@example.com",
			mockSetup: func(m *mocks.OwnerCarsGetter) {
				m.On("GetCarsByOwner", mock.Anything, "owner@example.com", storage.DefaultPage()).Return(nil, errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Failed to fetch cars"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockGetter := mocks.NewOwnerCarsGetter(t)
			tc.mockSetup(mockGetter)

			router := chi.NewRouter()
			router.Get("/cars/user/{email}", New(logger, mockGetter))

			req, err := http.NewRequest("GET", tc.path, nil)
			require.NoError(t, err)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "Status code mismatch")

			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "Response body mismatch")
			} else if tc.checkBody != nil {
				tc.checkBody(t, rr.Body.String())
			}
		})
	}
}

func TestHandlerWithoutChiContext(t *testing.T) {
	t.Parallel()

	handler := New(slogdiscard.NewDiscardLogger(), mocks.NewOwnerCarsGetter(t))

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"email is required"}`, rr.Body.String())
}
