package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"

	"github.com/dgrijalva/jwt-go"
)

var client = &http.Client{}

type Config struct {
	RequestUrl string
	AdminKey   string
}

var config Config

func printHelp() {
	fmt.Println("Usage: admin <commands> [options...] ")
	fmt.Println("Commands: status|list")
	fmt.Println("Options:")
	fmt.Println(" -s, --server   Admin listener url, e.g http://127.0.0.1:9091")
	fmt.Println(" -k, --key      Admin key the daemon was configured with")
	fmt.Println(" -f, --format   Output format, json or plain")
}

func newToken() (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{})
	return token.SignedString([]byte(config.AdminKey))
}

func request(path string) {
	tokenString, err := newToken()
	if err != nil {
		fmt.Println("internal error", err)
		return
	}

	requestUrl := config.RequestUrl + path
	req, err := http.NewRequest("GET", requestUrl, nil)
	if err != nil {
		fmt.Println("create request failed", err)
		return
	}
	req.Header.Set("Authorization", "Bearer "+tokenString)
	response, err := client.Do(req)
	if err != nil {
		fmt.Println("send request failed", err)
		return
	}
	defer response.Body.Close()
	if response.StatusCode != 200 {
		fmt.Println("request failed as status != 200", response.StatusCode)
		return
	}

	body, _ := ioutil.ReadAll(response.Body)
	fmt.Println(string(body))
}

func deletionStatus(format string) {
	query := url.Values{}
	query.Set("cmd", "rbd mirror deletion status")
	query.Set("format", format)
	request("/admin/command?" + query.Encode())
}

func listCommands() {
	request("/admin/commands")
}

func main() {
	if len(os.Args) <= 1 {
		printHelp()
		return
	}
	mySet := flag.NewFlagSet("", flag.ExitOnError)
	server := mySet.String("s", "http://127.0.0.1:9091", "admin listener url")
	key := mySet.String("k", "", "admin key")
	format := mySet.String("f", "json", "output format")
	mySet.StringVar(server, "server", "http://127.0.0.1:9091", "admin listener url")
	mySet.StringVar(key, "key", "", "admin key")
	mySet.StringVar(format, "format", "json", "output format")
	mySet.Parse(os.Args[2:])

	config.RequestUrl = *server
	config.AdminKey = *key

	switch os.Args[1] {
	case "status":
		deletionStatus(*format)
	case "list":
		listCommands()
	default:
		printHelp()
		return
	}
}
