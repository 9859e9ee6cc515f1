package datarecording

import (
	"os"
	"strings"
	"sync"
	"time"
)

const execTableName = "exec_info"

const timeLayout = "2006-01-02 15:04:05.000000000"

// execInfo is one property of the process that produced a recording.
type execInfo struct {
	Property string
	Value    string
}

// execRecorder records how and when the recording process ran.
type execRecorder struct {
	recorder DataRecorder
	once     sync.Once
}

func newExecRecorder(recorder DataRecorder) *execRecorder {
	e := &execRecorder{recorder: recorder}
	recorder.CreateTable(execTableName, execInfo{})

	return e
}

// Start records the start time, the command, and the working directory.
func (e *execRecorder) Start() {
	e.recorder.InsertData(execTableName,
		execInfo{"Start Time", time.Now().Format(timeLayout)})
	e.recorder.InsertData(execTableName,
		execInfo{"Command", strings.Join(os.Args, " ")})

	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}

	e.recorder.InsertData(execTableName, execInfo{"Working Directory", cwd})
}

// End records the end time. Only the first call has an effect.
func (e *execRecorder) End() {
	e.once.Do(func() {
		e.recorder.InsertData(execTableName,
			execInfo{"End Time", time.Now().Format(timeLayout)})
	})
}
