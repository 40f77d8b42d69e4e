package util

import (
	"encoding/json"
	"fmt"
)

// SetResponse - common response envelope
func SetResponse(data interface{}, status int, message string) map[string]interface{} {
	response := make(map[string]interface{})
	response["data"] = nil
	if data != nil {
		response["data"] = data
	}
	response["status"] = status
	response["message"] = message
	return response
}

// PrettyPrint - print a value as indented json
func PrettyPrint(data ...interface{}) error {
	fmt.Println()
	byteData, err := json.MarshalIndent(data[len(data)-1], "", " ")
	if err != nil {
		return err
	}
	if len(data) > 1 {
		fmt.Println(data[:len(data)-1]...)
	}
	fmt.Println(string(byteData))
	fmt.Println()
	return nil
}

// RecoverGoroutinePanic - swallow a goroutine panic, optionally reporting it
func RecoverGoroutinePanic(errChan chan<- error) {
	if r := recover(); r != nil {
		fmt.Println("Recovered from go routine panic:", r)
		if errChan != nil {
			errChan <- fmt.Errorf("error due to panic: %v", r)
		}
	}
}

// Recover - swallow a panic
func Recover() {
	if r := recover(); r != nil {
		fmt.Println("Recovered from panic:", r)
	}
}
