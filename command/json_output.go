package command

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type JSONOutput struct {
	commonOutputFormatter

	stdout io.Writer
	stderr io.Writer
}

func (jo *JSONOutput) WriteOutput() {
	if jo.errorOutput != nil {
		_, _ = fmt.Fprintln(jo.stderr, jo.getErrorOutput())

		return
	}

	_, _ = fmt.Fprintln(jo.stdout, jo.getCommandOutput())
}

func newJSONOutput() *JSONOutput {
	return &JSONOutput{stdout: os.Stdout, stderr: os.Stderr}
}

func (jo *JSONOutput) getErrorOutput() string {
	return marshalJSONToString(
		struct {
			Err string `json:"error"`
		}{
			Err: jo.errorOutput.Error(),
		},
	)
}

func (jo *JSONOutput) getCommandOutput() string {
	return marshalJSONToString(jo.commandOutput)
}

func marshalJSONToString(input interface{}) string {
	bytes, err := json.Marshal(input)
	if err != nil {
		return err.Error()
	}

	return string(bytes)
}
