package logsvc

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseflow/backend/core"
	"github.com/courseflow/backend/core/course"
)

func TestPrepare(t *testing.T) {
	l := RollbarLogger{}
	err := errors.New("boom")

	args := l.prepare("saving", []interface{}{
		err,
		map[string]interface{}{"path": "database.json"},
		course.Course{ID: 3, Name: "Physics"},
		course.Course{ID: 4, Name: "Chemistry"},
		42,
	})

	require.Len(t, args, 3)
	assert.Equal(t, "saving", args[0])
	assert.Equal(t, err, args[1])
	assert.Equal(t, map[string]interface{}{
		"path":        "database.json",
		"course_id":   3,
		"course_name": "Physics",
		"context":     []interface{}{42},
	}, args[2])

	assert.Equal(t, []interface{}{"plain"}, l.prepare("plain", nil))
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	l := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{TestMode: true})

	l.Warn("could not mirror course", errors.New("mirror down"), map[string]interface{}{"course_id": 3})
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "could not mirror course\nmirror down\n"), out)
	assert.Contains(t, out, "services/logger.TestPrint", "errors are printed with their stack")
	assert.True(t, strings.HasSuffix(out, "map[course_id:3]\n"), out)
}
