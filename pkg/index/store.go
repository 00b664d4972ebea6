package index

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/rs/zerolog"
)

// storeNode pairs an IPFS API client with the endpoint it talks to. Like a
// sticky provider binding, a node is replaced wholesale on failure.
type storeNode struct {
	shell *shell.Shell
	url   string
}

var errNoStoreNode = errors.New("no index store node available")

// electStoreNode probes every configured store endpoint at once and keeps
// the first to answer. Mirrors the sticky-session election over algod
// endpoints, but for the index store role.
func electStoreNode(ctx context.Context, urls []string, logger zerolog.Logger) (*storeNode, error) {
	if len(urls) == 0 {
		return nil, errNoStoreNode
	}

	probeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type probeResult struct {
		node *storeNode
		err  error
		url  string
	}
	results := make(chan probeResult, len(urls))

	for _, nodeURL := range urls {
		go func(nodeURL string) {
			client := shell.NewShell(nodeURL)
			if _, err := client.FilesStat(probeCtx, "/"); err != nil {
				results <- probeResult{err: err, url: nodeURL}
				return
			}
			results <- probeResult{node: &storeNode{shell: client, url: nodeURL}, url: nodeURL}
		}(nodeURL)
	}

	var lastErr error
	for range urls {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result := <-results:
			if result.node != nil {
				logger.Info().Str("store", result.url).Msg("index writer elected")
				return result.node, nil
			}
			lastErr = result.err
			logger.Warn().Str("store", result.url).Err(result.err).Msg("store node not available")
		}
	}

	return nil, errors.Join(errNoStoreNode, lastErr)
}

func (n *storeNode) alive(ctx context.Context) bool {
	_, err := n.shell.FilesStat(ctx, "/")
	return err == nil
}

func (n *storeNode) ensureDir(ctx context.Context, dir string) error {
	// mkdir with parents is idempotent; an existing directory is fine.
	return n.shell.FilesMkdir(ctx, dir, shell.FilesMkdir.Parents(true))
}

func (n *storeNode) writeJSON(ctx context.Context, filePath string, value any) error {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filePath, err)
	}

	err = n.shell.FilesWrite(ctx, filePath, bytes.NewReader(payload),
		shell.FilesWrite.Create(true),
		shell.FilesWrite.Parents(true),
		shell.FilesWrite.Truncate(true),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", filePath, err)
	}
	return nil
}

// move commits a staged file to its final path. The destination is removed
// first because MFS mv refuses to replace; a concurrent reader sees the old
// file or the new one, never a partial write.
func (n *storeNode) move(ctx context.Context, src string, dst string) error {
	if err := n.ensureDir(ctx, path.Dir(dst)); err != nil {
		return err
	}
	_ = n.shell.FilesRm(ctx, dst, true)
	if err := n.shell.FilesMv(ctx, src, dst); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", dst, err)
	}
	return nil
}

func (n *storeNode) exists(ctx context.Context, filePath string) bool {
	_, err := n.shell.FilesStat(ctx, filePath)
	return err == nil
}

func (n *storeNode) rootCID(ctx context.Context, root string) (string, error) {
	stat, err := n.shell.FilesStat(ctx, root)
	if err != nil {
		return "", fmt.Errorf("failed to stat index root %s: %w", root, err)
	}
	return stat.Hash, nil
}

// readJSON fetches and parses an MFS file, returning nil without error on
// any not-found condition.
func readJSON[T any](ctx context.Context, node *storeNode, filePath string) (*T, error) {
	reader, err := node.shell.FilesRead(ctx, filePath)
	if err != nil {
		return nil, nil
	}
	defer reader.Close()
	return decodeJSON[T](reader)
}

// catJSON fetches and parses a file from an immutable /ipfs/ snapshot path,
// with the same nil-on-missing contract as readJSON.
func catJSON[T any](node *storeNode, snapshotPath string) (*T, error) {
	reader, err := node.shell.Cat(snapshotPath)
	if err != nil {
		return nil, nil
	}
	defer reader.Close()
	return decodeJSON[T](reader)
}

func decodeJSON[T any](reader io.Reader) (*T, error) {
	payload, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil
	}
	var value T
	if err := json.Unmarshal(payload, &value); err != nil {
		return nil, fmt.Errorf("corrupt index document: %w", err)
	}
	return &value, nil
}
