package index

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/algocert/anchor-sdk-go/pkg/note"
	"github.com/algocert/anchor-sdk-go/pkg/shared"
)

// Index is the process-local handle on the replicated metadata index.
type Index struct {
	config Config
	logger zerolog.Logger

	mutex      sync.Mutex
	writerNode *storeNode
	cachedCID  string
	cachedAt   time.Time
}

// New creates an index handle. No store node is contacted until the first
// operation; the writer is elected lazily.
func New(config Config) (*Index, error) {
	if len(config.StoreURLs) == 0 {
		return nil, fmt.Errorf("at least one store URL is required")
	}
	if config.Root == "" {
		config.Root = DefaultRoot
	}
	if !strings.HasPrefix(config.Root, "/") {
		return nil, fmt.Errorf("index root must be an absolute MFS path, got %q", config.Root)
	}
	if config.ShardWidth <= 0 {
		config.ShardWidth = DefaultShardWidth
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = DefaultCacheTTL
	}

	return &Index{config: config, logger: config.Logger}, nil
}

// FromEnv builds an index from IPFS_API_URLS (or IPFS_API_URL) and the
// CERT_INDEX_* variables.
func FromEnv() (*Index, error) {
	shared.LoadDotEnv()

	cacheTTL := time.Duration(0)
	if raw := shared.Env("CERT_INDEX_CACHE_TTL_SEC"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			cacheTTL = time.Duration(seconds) * time.Second
		}
	}

	shardWidth := 0
	if raw := shared.Env("CERT_INDEX_SHARDS"); raw != "" {
		if width, err := strconv.Atoi(raw); err == nil {
			shardWidth = width
		}
	}

	return New(Config{
		StoreURLs:  shared.SplitList(shared.FirstNonEmpty(shared.Env("IPFS_API_URLS"), shared.Env("IPFS_API_URL"))),
		Root:       shared.FirstNonEmpty(shared.Env("CERT_INDEX_MFS_ROOT"), DefaultRoot),
		ShardWidth: shardWidth,
		IPNSKey:    shared.Env("CERT_INDEX_IPNS_KEY"),
		RootCID:    shared.Env("CERT_INDEX_ROOT_CID"),
		CacheTTL:   cacheTTL,
	})
}

// Publish writes the by-fingerprint entry and, when an owner name is
// present, appends to the owner's list, then recomputes the root content
// address and republishes the stable name. It is idempotent per
// fingerprint: an existing entry short-circuits and the owner list never
// gains a duplicate.
//
// The two index writes are independent atomic steps with no transaction
// across them; by-hash is the authority for verification. Concurrent
// publishers in different processes race on the stable-name pointer
// (last publish wins); idempotency, not locking, makes that safe per
// fingerprint.
func (x *Index) Publish(ctx context.Context, params PublishParams) (string, error) {
	if err := note.ValidateFingerprint(params.FingerprintHex); err != nil {
		return "", err
	}
	if strings.TrimSpace(params.TxID) == "" {
		return "", fmt.Errorf("transaction ID is required")
	}

	fingerprint := note.NormalizeFingerprint(params.FingerprintHex)
	timestamp := params.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	timestampISO := timestamp.UTC().Format(time.RFC3339)

	node, err := x.writer(ctx)
	if err != nil {
		return "", err
	}

	ownerNormalized := NormalizeOwner(params.OwnerName)

	if err := x.publishEntry(ctx, node, fingerprint, ownerNormalized, timestampISO, params); err != nil {
		return "", err
	}
	if ownerNormalized != "" {
		if err := x.publishOwnerItem(ctx, node, fingerprint, ownerNormalized, timestampISO, params); err != nil {
			return "", err
		}
	}

	return x.publishRoot(ctx, node)
}

// Lookup fetches the by-fingerprint entry, preferring the elected writer's
// live tree so the process observes its own publishes. It returns nil
// without error when the fingerprint was never published.
func (x *Index) Lookup(ctx context.Context, fingerprintHex string) (*Entry, error) {
	if err := note.ValidateFingerprint(fingerprintHex); err != nil {
		return nil, err
	}
	fingerprint := note.NormalizeFingerprint(fingerprintHex)

	node, err := x.writer(ctx)
	if err != nil {
		return nil, err
	}

	if x.config.RootCID != "" {
		return catJSON[Entry](node, x.snapshotPath(x.config.RootCID, x.hashRelPath(fingerprint)))
	}
	return readJSON[Entry](ctx, node, x.config.Root+x.hashRelPath(fingerprint))
}

// LookupByOwner fetches an owner's list by case-insensitive, accent-
// insensitive name. Nil without error when the owner has no entries.
func (x *Index) LookupByOwner(ctx context.Context, ownerName string) (*OwnerList, error) {
	ownerNormalized := NormalizeOwner(ownerName)
	if ownerNormalized == "" {
		return nil, fmt.Errorf("owner name is required")
	}

	node, err := x.writer(ctx)
	if err != nil {
		return nil, err
	}

	if x.config.RootCID != "" {
		return catJSON[OwnerList](node, x.snapshotPath(x.config.RootCID, x.ownerRelPath(ownerNormalized)))
	}
	return readJSON[OwnerList](ctx, node, x.config.Root+x.ownerRelPath(ownerNormalized))
}

// RootCID resolves the current root content address: a configured fixed
// CID wins, then a cached resolution within its TTL, then a fresh stat of
// the live tree (republished under the stable name when one is
// configured).
func (x *Index) RootCID(ctx context.Context) (string, error) {
	if x.config.RootCID != "" {
		return x.config.RootCID, nil
	}

	x.mutex.Lock()
	if x.cachedCID != "" && time.Since(x.cachedAt) < x.config.CacheTTL {
		cid := x.cachedCID
		x.mutex.Unlock()
		return cid, nil
	}
	x.mutex.Unlock()

	node, err := x.writer(ctx)
	if err != nil {
		return "", err
	}
	return x.publishRoot(ctx, node)
}

func (x *Index) publishEntry(
	ctx context.Context,
	node *storeNode,
	fingerprint string,
	ownerNormalized string,
	timestampISO string,
	params PublishParams,
) error {
	finalPath := x.config.Root + x.hashRelPath(fingerprint)
	if node.exists(ctx, finalPath) {
		x.logger.Debug().Str("fingerprint", fingerprint).Msg("entry already published")
		return nil
	}

	version := params.Version
	if version == "" {
		if params.Kind != "" || ownerNormalized != "" {
			version = string(note.VersionV2)
		} else {
			version = string(note.VersionV1)
		}
	}

	entry := Entry{
		Version:     version,
		Fingerprint: fingerprint,
		ContentID:   params.ContentID,
		TxID:        params.TxID,
		Wallet:      params.Wallet,
		Timestamp:   timestampISO,
		Kind:        strings.TrimSpace(params.Kind),
		Owner:       ownerNormalized,
	}

	stagingPath := x.stagingPath(fingerprint + ".json")
	if err := x.stageAndMove(ctx, node, stagingPath, finalPath, entry); err != nil {
		return err
	}

	x.logger.Info().Str("fingerprint", fingerprint).Str("txid", params.TxID).Msg("index entry published")
	return nil
}

func (x *Index) publishOwnerItem(
	ctx context.Context,
	node *storeNode,
	fingerprint string,
	ownerNormalized string,
	timestampISO string,
	params PublishParams,
) error {
	finalPath := x.config.Root + x.ownerRelPath(ownerNormalized)

	list, err := readJSON[OwnerList](ctx, node, finalPath)
	if err != nil {
		return err
	}
	if list == nil {
		list = &OwnerList{Owner: ownerNormalized, Items: []OwnerItem{}}
	}

	for _, item := range list.Items {
		if item.Fingerprint == fingerprint {
			return nil
		}
	}

	list.Items = append(list.Items, OwnerItem{
		Fingerprint: fingerprint,
		TxID:        params.TxID,
		ContentID:   params.ContentID,
		Timestamp:   timestampISO,
		Kind:        strings.TrimSpace(params.Kind),
	})
	sort.SliceStable(list.Items, func(i, j int) bool {
		return list.Items[i].Timestamp > list.Items[j].Timestamp
	})

	stagingPath := x.stagingPath(ownerNormalized + ".json")
	return x.stageAndMove(ctx, node, stagingPath, finalPath, list)
}

func (x *Index) stageAndMove(ctx context.Context, node *storeNode, stagingPath, finalPath string, value any) error {
	if err := node.writeJSON(ctx, stagingPath, value); err != nil {
		return err
	}
	return node.move(ctx, stagingPath, finalPath)
}

// publishRoot recomputes the tree's content address and republishes the
// stable name when one is configured. A failed name publish degrades to
// returning the fresh CID; readers holding the previous name resolution
// still see a valid, merely older, snapshot.
func (x *Index) publishRoot(ctx context.Context, node *storeNode) (string, error) {
	cid, err := node.rootCID(ctx, x.config.Root)
	if err != nil {
		return "", err
	}

	if x.config.IPNSKey != "" {
		publish := func() error {
			_, publishErr := node.shell.PublishWithDetails("/ipfs/"+cid, x.config.IPNSKey, 0, 0, false)
			return publishErr
		}

		policy := backoff.NewExponentialBackOff()
		policy.MaxElapsedTime = 15 * time.Second
		if err := backoff.Retry(publish, backoff.WithContext(policy, ctx)); err != nil {
			x.logger.Warn().Str("cid", cid).Err(err).Msg("IPNS republish failed, serving CID directly")
		}
	}

	x.mutex.Lock()
	x.cachedCID = cid
	x.cachedAt = time.Now()
	x.mutex.Unlock()

	return cid, nil
}

// writer returns the elected store node, probing the held one first and
// re-electing when it no longer answers.
func (x *Index) writer(ctx context.Context) (*storeNode, error) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	if x.writerNode != nil {
		if x.writerNode.alive(ctx) {
			return x.writerNode, nil
		}
		x.logger.Warn().Str("store", x.writerNode.url).Msg("index writer went down")
		x.writerNode = nil
	}

	elected, err := electStoreNode(ctx, x.config.StoreURLs, x.logger)
	if err != nil {
		return nil, err
	}
	x.writerNode = elected

	if err := x.ensureLayout(ctx, elected); err != nil {
		x.writerNode = nil
		return nil, err
	}
	return elected, nil
}

func (x *Index) ensureLayout(ctx context.Context, node *storeNode) error {
	for _, dir := range []string{x.config.Root, x.config.Root + "/by-hash", x.config.Root + "/by-owner", x.config.Root + "/staging"} {
		if err := node.ensureDir(ctx, dir); err != nil {
			return fmt.Errorf("failed to create index directory %s: %w", dir, err)
		}
	}
	return nil
}

func (x *Index) hashRelPath(fingerprint string) string {
	return "/by-hash/" + ShardKey(fingerprint, x.config.ShardWidth) + "/" + fingerprint + ".json"
}

func (x *Index) ownerRelPath(ownerNormalized string) string {
	return "/by-owner/" + OwnerShardKey(ownerNormalized) + "/" + ownerNormalized + ".json"
}

func (x *Index) stagingPath(name string) string {
	return x.config.Root + "/staging/" + name
}

func (x *Index) snapshotPath(cid string, relPath string) string {
	return "/ipfs/" + cid + relPath
}
