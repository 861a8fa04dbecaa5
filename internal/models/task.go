package models

// Task represents a brewery waiting for its address to be geocoded.
type Task struct {
	ID      string // ID is the brewery identifier.
	Address string // Address is the location to be geocoded.
}
