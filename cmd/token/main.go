// token 为联调签发访问令牌
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/s-dudhiya/EduNexus/internal/conf"
	"github.com/s-dudhiya/EduNexus/pkg/jwt"
)

var (
	confPath = flag.String("conf", "./config/config.yaml", "配置文件路径")
	userID   = flag.Int64("id", 0, "学号或工号")
	role     = flag.String("role", string(jwt.RoleStudent), "角色 student/faculty")
)

func main() {
	flag.Parse()
	cfg := conf.Load(*confPath)

	token, err := jwt.NewJWT(cfg).GenToken(*userID, jwt.Role(*role))
	if err != nil {
		fmt.Fprintf(os.Stderr, "gen token failed, err:%v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
