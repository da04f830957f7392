package udp

import (
	"fmt"
	"net"
)

func OpenUdp(bindAddr string) (*net.UDPConn, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", bindAddr)
	if err != nil {
		return nil, err
	}
	udpHander, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	return udpHander, nil
}

func UdpWrite(conn *net.UDPConn, dstAddr *net.UDPAddr, body []byte ) error {
	cnt, err := conn.WriteToUDP(body, dstAddr)
	if err != nil {
		return fmt.Errorf("udp write fail, %s", err.Error())
	}
	if cnt != len(body) {
		return fmt.Errorf("udp send %d out of %d bytes", cnt, len(body))
	}
	return nil
}
