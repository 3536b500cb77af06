package allocator

// Snapshot is a read-only view of the block table.
type Snapshot struct {
	// Blocks holds the owning process id per block, 0 for a free block.
	Blocks       []int   `json:"blocks" yaml:"blocks"`
	BlockSizeMB  float64 `json:"blockSizeMB" yaml:"blockSizeMB"`
	TotalMB      int     `json:"totalMB" yaml:"totalMB"`
	UsedMB       int     `json:"usedMB" yaml:"usedMB"`
	FreeMB       int     `json:"freeMB" yaml:"freeMB"`
	UsagePercent int     `json:"usagePercent" yaml:"usagePercent"`
}

// FreeBlocks returns the number of unowned blocks.
func (s *Snapshot) FreeBlocks() int {
	free := 0
	for _, owner := range s.Blocks {
		if owner == 0 {
			free++
		}
	}
	return free
}
