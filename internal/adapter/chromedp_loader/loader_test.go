package chromedp_loader

import (
	"testing"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"

	"github.com/user/memorial-extractor/internal/repository"
)

func TestDocumentStatus_KeepsFirstDocumentResponse(t *testing.T) {
	d := &documentStatus{}

	d.observe(&network.EventResponseReceived{Type: network.ResourceTypeScript, Response: &network.Response{Status: 500}})
	d.observe("unrelated event")
	d.observe(&network.EventResponseReceived{Type: network.ResourceTypeDocument, Response: &network.Response{Status: 404}})
	d.observe(&network.EventResponseReceived{Type: network.ResourceTypeDocument, Response: &network.Response{Status: 200}})

	assert.Equal(t, int64(404), d.get())
}

func TestCheckStatus(t *testing.T) {
	assert.NoError(t, checkStatus(0))
	assert.NoError(t, checkStatus(200))
	assert.NoError(t, checkStatus(204))
	assert.ErrorIs(t, checkStatus(403), repository.ErrFetchFailed)
	assert.ErrorIs(t, checkStatus(301), repository.ErrFetchFailed)
}
