package apply

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/evm-bridge/command"
	"github.com/0xPolygon/evm-bridge/command/helper"
)

const fileFlag = "file"

var (
	replayFile string

	errEmptyReplay = errors.New("no transactions to replay")
)

// GetReplayCommand returns the command applying a list of raw transactions as one block
func GetReplayCommand() *cobra.Command {
	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Applies a file of signed raw transactions, one hex encoded transaction per line, as one block",
		Run:   runReplayCommand,
	}

	replayCmd.Flags().StringVar(
		&replayFile,
		fileFlag,
		"",
		"the file holding the transactions",
	)

	_ = replayCmd.MarkFlagRequired(fileFlag)

	return replayCmd
}

// readTransactions reads one hex encoded transaction per line, skipping
// blank lines and lines starting with #
func readTransactions(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raws [][]byte

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0

	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		raw, err := helper.ParseBytes(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		raws = append(raws, raw)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(raws) == 0 {
		return nil, errEmptyReplay
	}

	return raws, nil
}

func runReplayCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	raws, err := readTransactions(replayFile)
	if err != nil {
		outputter.SetError(err)

		return
	}

	srv, err := helper.OpenInitializedServer(cmd)
	if err != nil {
		outputter.SetError(err)

		return
	}

	defer func() {
		if err := srv.Close(); err != nil {
			outputter.SetError(err)
		}
	}()

	number := srv.Executor().Header().Number

	res, err := srv.Pallet().SubmitBlock(raws)
	if err != nil {
		outputter.SetError(err)

		return
	}

	hash, err := srv.SealBlock()
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(newBlockResult(number, hash, res))
}
