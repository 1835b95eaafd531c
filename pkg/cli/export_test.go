package cli

// RenderHeatmap exposes renderHeatmap for testing
var RenderHeatmap = renderHeatmap

// GetIndexConfig exposes getIndexConfig for testing
var GetIndexConfig = getIndexConfig
