//go:build !integration

package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricedrop/tracker-cli/internal/config"
	"github.com/pricedrop/tracker-cli/internal/items"
	"github.com/pricedrop/tracker-cli/internal/model"
)

// setTestConfig points the global config at a fresh temp dir.
func setTestConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cfg = &config.Config{}
	cfg.ItemsFile = filepath.Join(dir, "items.json")
	cfg.HistoryFile = filepath.Join(dir, "history.json")
}

// setAddFlags assigns the items add flag globals for one test.
func setAddFlags(url, name, source string, threshold float64) {
	itemsAddURL = url
	itemsAddName = name
	itemsAddSource = source
	itemsAddThreshold = threshold
}

func TestItemsAdd_WritesFile(t *testing.T) {
	setTestConfig(t)
	setAddFlags("https://www.amazon.in/dp/B0TEST", "Mechanical Keyboard", "", 3000)

	require.NoError(t, itemsAddCmd.RunE(itemsAddCmd, nil))

	list, err := items.Load(cfg.ItemsFile)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Mechanical Keyboard", list[0].Name)
	assert.Equal(t, model.SourceAmazon, list[0].Source)
	assert.InDelta(t, 3000, list[0].Threshold, 0.001)
}

func TestItemsAdd_DetectsFlipkart(t *testing.T) {
	setTestConfig(t)
	setAddFlags("https://www.flipkart.com/headphones/p/itm123", "Wireless Headphones", "", 0)

	require.NoError(t, itemsAddCmd.RunE(itemsAddCmd, nil))

	list, err := items.Load(cfg.ItemsFile)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.SourceFlipkart, list[0].Source)
}

func TestItemsAdd_UnknownHost(t *testing.T) {
	setTestConfig(t)
	setAddFlags("https://example.com/product/1", "Widget", "", 0)

	err := itemsAddCmd.RunE(itemsAddCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot detect source")
}

func TestItemsAdd_ExplicitSourceSkipsDetection(t *testing.T) {
	setTestConfig(t)
	setAddFlags("https://example.com/product/1", "Widget", "myntra", 0)

	require.NoError(t, itemsAddCmd.RunE(itemsAddCmd, nil))

	list, err := items.Load(cfg.ItemsFile)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.SourceMyntra, list[0].Source)
}

func TestItemsAdd_DuplicateName(t *testing.T) {
	setTestConfig(t)
	seed := []model.Item{{Name: "Mechanical Keyboard", URL: "https://www.amazon.in/dp/B0OLD", Source: model.SourceAmazon}}
	require.NoError(t, items.Save(cfg.ItemsFile, seed))

	setAddFlags("https://www.amazon.in/dp/B0NEW", "Mechanical Keyboard", "", 0)

	err := itemsAddCmd.RunE(itemsAddCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already tracked")
}

func TestItemsRemove(t *testing.T) {
	setTestConfig(t)
	seed := []model.Item{
		{Name: "Keep Me", URL: "https://www.amazon.in/dp/B1", Source: model.SourceAmazon},
		{Name: "Drop Me", URL: "https://www.amazon.in/dp/B2", Source: model.SourceAmazon},
	}
	require.NoError(t, items.Save(cfg.ItemsFile, seed))

	require.NoError(t, itemsRemoveCmd.RunE(itemsRemoveCmd, []string{"Drop Me"}))

	list, err := items.Load(cfg.ItemsFile)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Keep Me", list[0].Name)
}

func TestItemsRemove_Unknown(t *testing.T) {
	setTestConfig(t)
	require.NoError(t, items.Save(cfg.ItemsFile, []model.Item{}))

	err := itemsRemoveCmd.RunE(itemsRemoveCmd, []string{"Ghost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tracked item")
}

func TestItemsSetThreshold(t *testing.T) {
	setTestConfig(t)
	seed := []model.Item{{Name: "Mechanical Keyboard", URL: "https://www.amazon.in/dp/B1", Source: model.SourceAmazon}}
	require.NoError(t, items.Save(cfg.ItemsFile, seed))

	require.NoError(t, itemsSetThresholdCmd.RunE(itemsSetThresholdCmd, []string{"Mechanical Keyboard", "2999.50"}))

	list, err := items.Load(cfg.ItemsFile)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.InDelta(t, 2999.50, list[0].Threshold, 0.001)
}

func TestItemsSetThreshold_BadPrice(t *testing.T) {
	setTestConfig(t)

	err := itemsSetThresholdCmd.RunE(itemsSetThresholdCmd, []string{"Anything", "not-a-price"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse price")
}

func TestItemsSetThreshold_Unknown(t *testing.T) {
	setTestConfig(t)
	require.NoError(t, items.Save(cfg.ItemsFile, []model.Item{}))

	err := itemsSetThresholdCmd.RunE(itemsSetThresholdCmd, []string{"Ghost", "100"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tracked item")
}

func TestRemoveByName(t *testing.T) {
	list := []model.Item{{Name: "A"}, {Name: "B"}}

	kept, removed := removeByName(list, "A")
	assert.True(t, removed)
	require.Len(t, kept, 1)
	assert.Equal(t, "B", kept[0].Name)

	kept, removed = removeByName(list, "C")
	assert.False(t, removed)
	assert.Len(t, kept, 2)
}

func TestFormatItemsList(t *testing.T) {
	list := []model.Item{
		{Name: "Wireless Headphones", Source: model.SourceFlipkart, Threshold: 1000},
		{Name: "Running Shoes", Source: model.SourceMyntra},
	}
	h := model.History{
		"Wireless Headphones": {
			{Price: 999, Timestamp: time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)},
		},
	}

	var buf bytes.Buffer
	formatItemsList(&buf, list, h)

	output := buf.String()
	assert.Contains(t, output, "NAME")
	assert.Contains(t, output, "Wireless Headphones")
	assert.Contains(t, output, "₹1,000.00")
	assert.Contains(t, output, "₹999.00")
	assert.Contains(t, output, "Running Shoes")
	assert.Contains(t, output, "myntra")
}
