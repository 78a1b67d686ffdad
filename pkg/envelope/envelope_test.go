package envelope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOK_EmptyErrorsArray(t *testing.T) {
	b, err := json.Marshal(OK(map[string]int{"n": 1}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"n":1},"errors":[]}`, string(b))
}

func TestFail_NullData(t *testing.T) {
	b, err := json.Marshal(Fail("Task not found"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"data":null,"errors":["Task not found"]}`, string(b))

	b, err = json.Marshal(Fail())
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"data":null,"errors":[]}`, string(b))
}

func TestFirst(t *testing.T) {
	assert.Equal(t, "", OK(1).First())
	assert.Equal(t, "a", Fail("a", "b").First())
}
