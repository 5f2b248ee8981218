package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrincipalRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), Principal{UserID: "u-1", SessionID: "s-1"})
	p, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u-1", p.UserID)
	assert.Equal(t, "s-1", p.SessionID)

	_, ok = FromContext(WithPrincipal(context.Background(), Principal{}))
	assert.False(t, ok, "empty user id is not authenticated")
}
