package main

import (
	"time"

	"github.com/estateshq/estates-backend/estates-notification/cmd"
	"github.com/estateshq/estates-backend/estates-notification/util"
)

func main() {
	data := map[string]interface{}{
		"startTime": time.Now().Format("January 02, 2006 - 03:04:05 PM MST"),
		"message":   "Starting notification backend server . . .",
		"repo":      "estates-notification",
	}
	util.PrettyPrint(data)
	cmd.New().Execute()
}
