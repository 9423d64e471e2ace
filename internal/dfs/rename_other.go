//go:build !linux

package dfs

func renameNoReplace(src, dst string) error {
	return renameStat(src, dst)
}
