package req

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusroom/internal/pkg/errs"
)

type loginBody struct {
	Username string `json:"username"`
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantCode    int
	}{
		{name: "ok", contentType: "application/json; charset=utf-8", body: `{"username":"ann"}`},
		{name: "wrong media type", contentType: "text/plain", body: `{}`, wantCode: errs.ErrUnsupportedMediaType},
		{name: "unknown field", contentType: "application/json", body: `{"nope":1}`, wantCode: errs.ErrInvalidJSONFormat},
		{name: "broken json", contentType: "application/json", body: `{"username":`, wantCode: errs.ErrInvalidJSONFormat},
		{name: "trailing content", contentType: "application/json", body: `{"username":"a"} {"username":"b"}`, wantCode: errs.ErrExtraContentInBody},
		{name: "too large", contentType: "application/json", body: `{"username":"` + strings.Repeat("a", int(MaxJSONBodySize)) + `"}`, wantCode: errs.ErrInvalidJSONFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			r.Header.Set("Content-Type", tt.contentType)

			var dst loginBody
			customErr := BindJSON(httptest.NewRecorder(), r, &dst)
			if tt.wantCode == 0 {
				require.Nil(t, customErr)
				assert.Equal(t, "ann", dst.Username)
				return
			}
			require.NotNil(t, customErr)
			assert.Equal(t, tt.wantCode, customErr.Code)
		})
	}
}
