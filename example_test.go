package geturl

import (
	"fmt"
	"io"
	"os"
)

func ExampleRequest() {
	req := NewRequest("http://www.example.com/?a=b").
		SetHeader("Accept", "text/html")
	resp, err := req.Open()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer resp.Close()
	_, err = io.Copy(os.Stdout, resp)
	fmt.Println(err)
}
