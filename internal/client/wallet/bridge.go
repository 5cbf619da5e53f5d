package wallet

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "/suiblog.wallet.v1.WalletBridge/"

// bridgeClient is the RPC surface of the wallet daemon. Messages are plain
// google.protobuf.Struct values so no generated stubs are needed.
type bridgeClient interface {
	Accounts(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SignAndExecute(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Ping(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RefreshSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type grpcBridge struct {
	cc grpc.ClientConnInterface
}

func newBridgeClient(cc grpc.ClientConnInterface) bridgeClient {
	return &grpcBridge{cc: cc}
}

func (b *grpcBridge) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := b.cc.Invoke(ctx, serviceName+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *grpcBridge) Accounts(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return b.invoke(ctx, "Accounts", in, opts...)
}

func (b *grpcBridge) SignAndExecute(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return b.invoke(ctx, "SignAndExecute", in, opts...)
}

func (b *grpcBridge) Ping(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return b.invoke(ctx, "Ping", in, opts...)
}

func (b *grpcBridge) RefreshSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return b.invoke(ctx, "RefreshSession", in, opts...)
}
