package validator

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type answerBody struct {
	QuestionID string `json:"question_id" binding:"required,slug"`
	AnswerID   string `json:"answer_id" binding:"required,max=4"`
}

func bindBody(body string) map[string]string {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var dst answerBody
	return Bind(c, &dst)
}

func TestBind(t *testing.T) {
	Setup()

	assert.Nil(t, bindBody(`{"question_id":"basecamp-q01","answer_id":"a"}`))

	fields := bindBody(`{"question_id":"../etc","answer_id":"toolong"}`)
	assert.Contains(t, fields, "question_id")
	assert.Contains(t, fields["question_id"], "letters, digits")
	assert.Contains(t, fields, "answer_id")

	fields = bindBody(`{}`)
	assert.Contains(t, fields["question_id"], "required")

	fields = bindBody(`{not json`)
	assert.Contains(t, fields, "detail")
}

func TestIsSlug(t *testing.T) {
	assert.True(t, IsSlug("alpine_01"))
	assert.True(t, IsSlug("A-b"))
	assert.False(t, IsSlug(""))
	assert.False(t, IsSlug("-lead"))
	assert.False(t, IsSlug("has space"))
	assert.False(t, IsSlug("key:injection"))
}
