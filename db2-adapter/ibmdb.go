//go:build ibmdb
// +build ibmdb

package main

import (
	_ "github.com/ibmdb/go_ibm_db"
)
