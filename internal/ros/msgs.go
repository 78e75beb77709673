// Package ros models the subset of ROS 2 message types this converter
// emits and their CDR serialization. Message definitions follow the
// common interface distributions (std_msgs, geometry_msgs, sensor_msgs,
// nav_msgs, tf2_msgs, visualization_msgs) plus the converter's own
// nuscenes_msgs types for annotation boxes and radar object lists.
package ros

// Message is a serializable ROS 2 message.
type Message interface {
	// TypeName returns the fully qualified type, e.g. "nav_msgs/msg/Odometry".
	TypeName() string
	// SerializeCDR appends the message body to e in declaration order.
	SerializeCDR(e *Encoder)
}

// StampedMessage is a message whose header is assigned by the caller
// after construction, the way decoded sensor payloads are stamped with
// their sample-data timestamp and sensor frame.
type StampedMessage interface {
	Message
	SetHeader(h Header)
}

// Header is std_msgs/msg/Header.
type Header struct {
	Stamp   Time
	FrameID string
}

func (h *Header) SerializeCDR(e *Encoder) {
	e.WriteInt32(h.Stamp.Sec)
	e.WriteUint32(h.Stamp.Nanosec)
	e.WriteString(h.FrameID)
}

// Vector3 is geometry_msgs/msg/Vector3.
type Vector3 struct {
	X, Y, Z float64
}

func (v *Vector3) SerializeCDR(e *Encoder) {
	e.WriteFloat64(v.X)
	e.WriteFloat64(v.Y)
	e.WriteFloat64(v.Z)
}

// Point is geometry_msgs/msg/Point.
type Point struct {
	X, Y, Z float64
}

func (p *Point) SerializeCDR(e *Encoder) {
	e.WriteFloat64(p.X)
	e.WriteFloat64(p.Y)
	e.WriteFloat64(p.Z)
}

// Quaternion is geometry_msgs/msg/Quaternion.
type Quaternion struct {
	X, Y, Z, W float64
}

func (q *Quaternion) SerializeCDR(e *Encoder) {
	e.WriteFloat64(q.X)
	e.WriteFloat64(q.Y)
	e.WriteFloat64(q.Z)
	e.WriteFloat64(q.W)
}

// Identity returns the identity rotation.
func Identity() Quaternion { return Quaternion{W: 1} }

// Pose is geometry_msgs/msg/Pose.
type Pose struct {
	Position    Point
	Orientation Quaternion
}

func (p *Pose) SerializeCDR(e *Encoder) {
	p.Position.SerializeCDR(e)
	p.Orientation.SerializeCDR(e)
}

// PoseWithCovariance is geometry_msgs/msg/PoseWithCovariance.
type PoseWithCovariance struct {
	Pose       Pose
	Covariance [36]float64
}

func (p *PoseWithCovariance) SerializeCDR(e *Encoder) {
	p.Pose.SerializeCDR(e)
	for _, c := range p.Covariance {
		e.WriteFloat64(c)
	}
}

// Twist is geometry_msgs/msg/Twist.
type Twist struct {
	Linear  Vector3
	Angular Vector3
}

func (t *Twist) SerializeCDR(e *Encoder) {
	t.Linear.SerializeCDR(e)
	t.Angular.SerializeCDR(e)
}

// TwistWithCovariance is geometry_msgs/msg/TwistWithCovariance.
type TwistWithCovariance struct {
	Twist      Twist
	Covariance [36]float64
}

func (t *TwistWithCovariance) SerializeCDR(e *Encoder) {
	t.Twist.SerializeCDR(e)
	for _, c := range t.Covariance {
		e.WriteFloat64(c)
	}
}

// Odometry is nav_msgs/msg/Odometry.
type Odometry struct {
	Header       Header
	ChildFrameID string
	Pose         PoseWithCovariance
	Twist        TwistWithCovariance
}

func (*Odometry) TypeName() string { return "nav_msgs/msg/Odometry" }

func (o *Odometry) SerializeCDR(e *Encoder) {
	o.Header.SerializeCDR(e)
	e.WriteString(o.ChildFrameID)
	o.Pose.SerializeCDR(e)
	o.Twist.SerializeCDR(e)
}

// Transform is geometry_msgs/msg/Transform.
type Transform struct {
	Translation Vector3
	Rotation    Quaternion
}

func (t *Transform) SerializeCDR(e *Encoder) {
	t.Translation.SerializeCDR(e)
	t.Rotation.SerializeCDR(e)
}

// TransformStamped is geometry_msgs/msg/TransformStamped.
type TransformStamped struct {
	Header       Header
	ChildFrameID string
	Transform    Transform
}

func (*TransformStamped) TypeName() string { return "geometry_msgs/msg/TransformStamped" }

func (t *TransformStamped) SerializeCDR(e *Encoder) {
	t.Header.SerializeCDR(e)
	e.WriteString(t.ChildFrameID)
	t.Transform.SerializeCDR(e)
}

// TFMessage is tf2_msgs/msg/TFMessage.
type TFMessage struct {
	Transforms []TransformStamped
}

func (*TFMessage) TypeName() string { return "tf2_msgs/msg/TFMessage" }

func (m *TFMessage) SerializeCDR(e *Encoder) {
	e.WriteSequenceLen(len(m.Transforms))
	for i := range m.Transforms {
		m.Transforms[i].SerializeCDR(e)
	}
}

// ColorRGBA is std_msgs/msg/ColorRGBA.
type ColorRGBA struct {
	R, G, B, A float32
}

func (c *ColorRGBA) SerializeCDR(e *Encoder) {
	e.WriteFloat32(c.R)
	e.WriteFloat32(c.G)
	e.WriteFloat32(c.B)
	e.WriteFloat32(c.A)
}

// PointField datatype constants from sensor_msgs/msg/PointField.
const (
	PointFieldInt8    uint8 = 1
	PointFieldUint8   uint8 = 2
	PointFieldInt16   uint8 = 3
	PointFieldUint16  uint8 = 4
	PointFieldInt32   uint8 = 5
	PointFieldUint32  uint8 = 6
	PointFieldFloat32 uint8 = 7
	PointFieldFloat64 uint8 = 8
)

// PointField is sensor_msgs/msg/PointField.
type PointField struct {
	Name     string
	Offset   uint32
	Datatype uint8
	Count    uint32
}

func (f *PointField) SerializeCDR(e *Encoder) {
	e.WriteString(f.Name)
	e.WriteUint32(f.Offset)
	e.WriteUint8(f.Datatype)
	e.WriteUint32(f.Count)
}

// PointCloud2 is sensor_msgs/msg/PointCloud2.
type PointCloud2 struct {
	Header      Header
	Height      uint32
	Width       uint32
	Fields      []PointField
	IsBigendian bool
	PointStep   uint32
	RowStep     uint32
	Data        []byte
	IsDense     bool
}

func (*PointCloud2) TypeName() string { return "sensor_msgs/msg/PointCloud2" }

// SetHeader implements StampedMessage.
func (m *PointCloud2) SetHeader(h Header) { m.Header = h }

func (m *PointCloud2) SerializeCDR(e *Encoder) {
	m.Header.SerializeCDR(e)
	e.WriteUint32(m.Height)
	e.WriteUint32(m.Width)
	e.WriteSequenceLen(len(m.Fields))
	for i := range m.Fields {
		m.Fields[i].SerializeCDR(e)
	}
	e.WriteBool(m.IsBigendian)
	e.WriteUint32(m.PointStep)
	e.WriteUint32(m.RowStep)
	e.WriteSequenceLen(len(m.Data))
	e.WriteBytes(m.Data)
	e.WriteBool(m.IsDense)
}

// Image is sensor_msgs/msg/Image.
type Image struct {
	Header      Header
	Height      uint32
	Width       uint32
	Encoding    string
	IsBigendian uint8
	Step        uint32
	Data        []byte
}

func (*Image) TypeName() string { return "sensor_msgs/msg/Image" }

// SetHeader implements StampedMessage.
func (m *Image) SetHeader(h Header) { m.Header = h }

func (m *Image) SerializeCDR(e *Encoder) {
	m.Header.SerializeCDR(e)
	e.WriteUint32(m.Height)
	e.WriteUint32(m.Width)
	e.WriteString(m.Encoding)
	e.WriteUint8(m.IsBigendian)
	e.WriteUint32(m.Step)
	e.WriteSequenceLen(len(m.Data))
	e.WriteBytes(m.Data)
}

// Marker type and action constants from visualization_msgs/msg/Marker.
const (
	MarkerLineList int32 = 5
	MarkerAdd      int32 = 0
)

// Marker is visualization_msgs/msg/Marker.
type Marker struct {
	Header                   Header
	Ns                       string
	ID                       int32
	Type                     int32
	Action                   int32
	Pose                     Pose
	Scale                    Vector3
	Color                    ColorRGBA
	Lifetime                 Duration
	FrameLocked              bool
	Points                   []Point
	Colors                   []ColorRGBA
	Text                     string
	MeshResource             string
	MeshUseEmbeddedMaterials bool
}

func (*Marker) TypeName() string { return "visualization_msgs/msg/Marker" }

func (m *Marker) SerializeCDR(e *Encoder) {
	m.Header.SerializeCDR(e)
	e.WriteString(m.Ns)
	e.WriteInt32(m.ID)
	e.WriteInt32(m.Type)
	e.WriteInt32(m.Action)
	m.Pose.SerializeCDR(e)
	m.Scale.SerializeCDR(e)
	m.Color.SerializeCDR(e)
	e.WriteInt32(m.Lifetime.Sec)
	e.WriteUint32(m.Lifetime.Nanosec)
	e.WriteBool(m.FrameLocked)
	e.WriteSequenceLen(len(m.Points))
	for i := range m.Points {
		m.Points[i].SerializeCDR(e)
	}
	e.WriteSequenceLen(len(m.Colors))
	for i := range m.Colors {
		m.Colors[i].SerializeCDR(e)
	}
	e.WriteString(m.Text)
	e.WriteString(m.MeshResource)
	e.WriteBool(m.MeshUseEmbeddedMaterials)
}

// MarkerArray is visualization_msgs/msg/MarkerArray.
type MarkerArray struct {
	Markers []Marker
}

func (*MarkerArray) TypeName() string { return "visualization_msgs/msg/MarkerArray" }

func (m *MarkerArray) SerializeCDR(e *Encoder) {
	e.WriteSequenceLen(len(m.Markers))
	for i := range m.Markers {
		m.Markers[i].SerializeCDR(e)
	}
}

// RadarObject is one return from a radar sweep, matching the field set of
// the nuScenes radar PCD records.
type RadarObject struct {
	Pose           Point
	DynProp        uint8
	RCS            float32
	Vx, Vy         float32
	VxComp, VyComp float32
	IsQualityValid uint8
	AmbigState     uint8
	XRms, YRms     uint8
	InvalidState   uint8
	Pdh0           uint8
	VxRms, VyRms   uint8
}

func (o *RadarObject) SerializeCDR(e *Encoder) {
	o.Pose.SerializeCDR(e)
	e.WriteUint8(o.DynProp)
	e.WriteFloat32(o.RCS)
	e.WriteFloat32(o.Vx)
	e.WriteFloat32(o.Vy)
	e.WriteFloat32(o.VxComp)
	e.WriteFloat32(o.VyComp)
	e.WriteUint8(o.IsQualityValid)
	e.WriteUint8(o.AmbigState)
	e.WriteUint8(o.XRms)
	e.WriteUint8(o.YRms)
	e.WriteUint8(o.InvalidState)
	e.WriteUint8(o.Pdh0)
	e.WriteUint8(o.VxRms)
	e.WriteUint8(o.VyRms)
}

// RadarObjects is nuscenes_msgs/msg/RadarObjects.
type RadarObjects struct {
	Header  Header
	Objects []RadarObject
}

func (*RadarObjects) TypeName() string { return "nuscenes_msgs/msg/RadarObjects" }

// SetHeader implements StampedMessage.
func (m *RadarObjects) SetHeader(h Header) { m.Header = h }

func (m *RadarObjects) SerializeCDR(e *Encoder) {
	m.Header.SerializeCDR(e)
	e.WriteSequenceLen(len(m.Objects))
	for i := range m.Objects {
		m.Objects[i].SerializeCDR(e)
	}
}

// Box is one annotated object with its interpolated pose.
type Box struct {
	Center       Point
	Size         Vector3
	Orientation  Quaternion
	Token        string
	CategoryName string
	Color        ColorRGBA
}

func (b *Box) SerializeCDR(e *Encoder) {
	b.Center.SerializeCDR(e)
	b.Size.SerializeCDR(e)
	b.Orientation.SerializeCDR(e)
	e.WriteString(b.Token)
	e.WriteString(b.CategoryName)
	b.Color.SerializeCDR(e)
}

// Boxes is nuscenes_msgs/msg/Boxes, the structured annotation list.
type Boxes struct {
	Header Header
	Boxes  []Box
}

func (*Boxes) TypeName() string { return "nuscenes_msgs/msg/Boxes" }

func (m *Boxes) SerializeCDR(e *Encoder) {
	m.Header.SerializeCDR(e)
	e.WriteSequenceLen(len(m.Boxes))
	for i := range m.Boxes {
		m.Boxes[i].SerializeCDR(e)
	}
}
