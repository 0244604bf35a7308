package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mukkai/mukkai-go/internal/client"
	"github.com/mukkai/mukkai-go/internal/client/api"
	"github.com/mukkai/mukkai-go/internal/client/cart"
	"github.com/mukkai/mukkai-go/internal/config"
	"github.com/mukkai/mukkai-go/internal/http/dto"
	"github.com/mukkai/mukkai-go/internal/logger"
	"github.com/mukkai/mukkai-go/internal/push"
)

// 交互式演示客户端，驱动客户端核心对接本地开发后端
func main() {
	cfg := config.Load()
	logger.Init("release", cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	var baseURL string
	flag.StringVar(&baseURL, "base-url", "", "后端地址，默认取 client.base_url")
	flag.Parse()
	if baseURL != "" {
		cfg.Client.BaseURL = baseURL
	}

	stdin := bufio.NewScanner(os.Stdin)

	core, err := client.New(&cfg.Client, client.Options{
		ConfirmSwitch: func(oldStoreID, newStoreID uint) bool {
			fmt.Printf("购物车已有店铺 %d 的商品，清空并切换到店铺 %d? [y/N] ", oldStoreID, newStoreID)
			if !stdin.Scan() {
				return false
			}
			return strings.EqualFold(strings.TrimSpace(stdin.Text()), "y")
		},
	})
	if err != nil {
		stdLog.Fatalf("客户端初始化失败: %v", err)
	}
	defer core.Close()

	ctx := context.Background()

	// 恢复本地登录态
	if err := core.Consumer.LoadUser(ctx); err == nil {
		if user := core.Consumer.User(); user != nil {
			fmt.Printf("已恢复消费者登录态: %s\n", user.Email)
		}
	}
	if err := core.Merchant.LoadUser(ctx); err == nil {
		if storeUser := core.Merchant.StoreUser(); storeUser != nil {
			fmt.Printf("已恢复店主登录态: %s\n", storeUser.Email)
		}
	}

	core.Channel.OnOrderStatus(func(p push.OrderStatusPayload) {
		fmt.Printf("\n[推送] 订单 #%d %s: %s\n> ", p.OrderID, p.Status, p.Message)
	})
	core.Channel.OnNewOrder(func(p push.NewOrderPayload) {
		fmt.Printf("\n[推送] 店铺 %d 新订单 #%d，金额 %s\n> ", p.StoreID, p.OrderID, p.Amount)
	})

	fmt.Println("输入 help 查看命令")
	fmt.Print("> ")
	for stdin.Scan() {
		line := strings.TrimSpace(stdin.Text())
		if line == "quit" || line == "exit" {
			break
		}
		if line != "" {
			runCommand(ctx, core, line)
		}
		fmt.Print("> ")
	}
}

func runCommand(ctx context.Context, core *client.Core, line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		printHelp()
	case "login":
		if len(args) < 2 {
			fmt.Println("用法: login <email> <password>")
			return
		}
		if err := core.Consumer.Login(ctx, args[0], args[1]); err != nil {
			fmt.Printf("登录失败: %v\n", err)
			return
		}
		fmt.Printf("消费者已登录: %s\n", core.Consumer.User().Name)
		core.Channel.Connect()
	case "login-store":
		if len(args) < 2 {
			fmt.Println("用法: login-store <email> <password>")
			return
		}
		if err := core.Merchant.Login(ctx, args[0], args[1]); err != nil {
			fmt.Printf("登录失败: %v\n", err)
			return
		}
		fmt.Printf("店主已登录: 店铺 %d\n", core.Merchant.StoreID())
		core.Channel.Connect()
	case "logout":
		core.Consumer.Logout()
		fmt.Println("消费者已登出")
	case "stores":
		category := ""
		if len(args) > 0 {
			category = args[0]
		}
		stores, err := core.API.SearchStores(ctx, category)
		if err != nil {
			fmt.Printf("查询失败: %v\n", err)
			return
		}
		for _, s := range stores {
			fmt.Printf("#%d %s (%s) 起送 %s 配送费 %s\n", s.ID, s.Name, s.Category, s.MinimumAmount, s.MinimumDeliveryAmount)
		}
	case "menu":
		storeID, ok := parseID(args, "menu <storeId>")
		if !ok {
			return
		}
		menus, err := core.API.SearchStoreMenus(ctx, storeID)
		if err != nil {
			fmt.Printf("查询失败: %v\n", err)
			return
		}
		for _, m := range menus {
			fmt.Printf("#%d %s %s\n", m.ID, m.Name, m.Amount)
		}
	case "add":
		if len(args) < 2 {
			fmt.Println("用法: add <storeId> <menuId> [qty]")
			return
		}
		storeID, err1 := strconv.ParseUint(args[0], 10, 32)
		menuID, err2 := strconv.ParseUint(args[1], 10, 32)
		if err1 != nil || err2 != nil {
			fmt.Println("用法: add <storeId> <menuId> [qty]")
			return
		}
		qty := 1
		if len(args) > 2 {
			qty, _ = strconv.Atoi(args[2])
		}
		menus, err := core.API.SearchStoreMenus(ctx, uint(storeID))
		if err != nil {
			fmt.Printf("查询菜单失败: %v\n", err)
			return
		}
		for _, m := range menus {
			if m.ID == uint(menuID) {
				if err := core.Cart.AddItem(cart.Item{
					StoreMenuID:  m.ID,
					StoreID:      uint(storeID),
					Name:         m.Name,
					UnitAmount:   m.Amount,
					ThumbnailURL: m.ThumbnailURL,
					Quantity:     qty,
				}); err != nil {
					fmt.Printf("加入失败: %v\n", err)
					return
				}
				fmt.Printf("已加入: %s x%d\n", m.Name, qty)
				return
			}
		}
		fmt.Println("菜单项不存在")
	case "cart":
		items := core.Cart.Items()
		if len(items) == 0 {
			fmt.Println("购物车为空")
			return
		}
		for _, item := range items {
			fmt.Printf("#%d %s x%d @%s\n", item.StoreMenuID, item.Name, item.Quantity, item.UnitAmount)
		}
		fmt.Printf("合计: %s\n", core.Cart.TotalAmount())
	case "checkout":
		items := core.Cart.Items()
		if len(items) == 0 {
			fmt.Println("购物车为空")
			return
		}
		address := strings.Join(args, " ")
		if address == "" {
			address = "演示地址"
		}
		input := api.CreateOrderInput{StoreID: core.Cart.ActiveStoreID(), Address: address}
		for _, item := range items {
			input.Items = append(input.Items, api.CreateOrderItemInput{StoreMenuID: item.StoreMenuID, Quantity: item.Quantity})
		}
		order, err := core.API.CreateOrder(ctx, input)
		if err != nil {
			fmt.Printf("下单失败: %v\n", err)
			return
		}
		core.Cart.Clear()
		fmt.Printf("下单成功: 订单 #%d 金额 %s 状态 %s\n", order.ID, order.Amount, order.Status)
	case "orders":
		orders, err := core.API.CurrentOrders(ctx)
		if err != nil {
			fmt.Printf("查询失败: %v\n", err)
			return
		}
		printOrders(orders)
	case "history":
		orders, err := core.API.HistoryOrders(ctx)
		if err != nil {
			fmt.Printf("查询失败: %v\n", err)
			return
		}
		printOrders(orders)
	case "store-orders":
		orders, err := core.API.StoreCurrentOrders(ctx)
		if err != nil {
			fmt.Printf("查询失败: %v\n", err)
			return
		}
		printOrders(orders)
	case "accept":
		orderID, ok := parseID(args, "accept <orderId>")
		if !ok {
			return
		}
		order, err := core.API.UpdateStoreOrderStatus(ctx, orderID, "CONFIRMED")
		if err != nil {
			fmt.Printf("接单失败: %v\n", err)
			return
		}
		fmt.Printf("订单 #%d -> %s\n", order.ID, order.Status)
	case "status":
		fmt.Printf("通道: %s", core.Channel.State())
		if reason := core.Channel.Reason(); reason != "" {
			fmt.Printf(" (%s)", reason)
		}
		fmt.Println()
	default:
		fmt.Println("未知命令，输入 help 查看")
	}
}

func printOrders(orders []dto.Order) {
	if len(orders) == 0 {
		fmt.Println("暂无订单")
		return
	}
	for _, o := range orders {
		fmt.Printf("#%d %s %s %s\n", o.ID, o.OrderNo, o.Status, o.Amount)
	}
}

func parseID(args []string, usage string) (uint, bool) {
	if len(args) < 1 {
		fmt.Println("用法: " + usage)
		return 0, false
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil || id == 0 {
		fmt.Println("用法: " + usage)
		return 0, false
	}
	return uint(id), true
}

func printHelp() {
	fmt.Println(`login <email> <password>        消费者登录
login-store <email> <password>  店主登录
logout                          消费者登出
stores [category]               查询店铺
menu <storeId>                  查询菜单
add <storeId> <menuId> [qty]    加入购物车
cart                            查看购物车
checkout [address]              结算下单
orders / history                进行中 / 历史订单
store-orders                    店铺当前订单 (店主)
accept <orderId>                确认订单 (店主)
status                          实时通道状态
quit                            退出`)
}
