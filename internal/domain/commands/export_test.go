package commands

// SelectPrimaryBranch exports selectPrimaryBranch for testing.
var SelectPrimaryBranch = selectPrimaryBranch //nolint:gochecknoglobals // test export

// RenderTable exports renderTable for testing.
var RenderTable = renderTable //nolint:gochecknoglobals // test export
